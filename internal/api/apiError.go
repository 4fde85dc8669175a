package api

import (
	"errors"
	"net/http"

	"github.com/mk1945/cloudvault/internal/platform/crypto"
	"github.com/mk1945/cloudvault/internal/service"
	"github.com/mk1945/cloudvault/internal/storage"
	"github.com/mk1945/cloudvault/internal/store"
)

// APIError represents a structured error response to be sent to the client.
// Only the message is serialized; the status travels in the HTTP header.
// It implements the standard `error` interface.
type APIError struct {
	// Status is the HTTP status code that corresponds to this error.
	Status int `json:"-"`
	// Message is the user-friendly error message.
	Message string `json:"message"`
}

// Error implements the error interface, allowing APIError to be used as a standard error.
func (e *APIError) Error() string {
	return e.Message
}

// --- Error Constructors ---

// NewBadRequestError creates an error representing a 400 Bad Request.
// Useful for validation failures or malformed requests.
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewUnauthorizedError creates an error representing a 401 Unauthorized.
// Useful when authentication is required and has failed or has not yet been provided.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: message,
	}
}

// NewNotFoundError creates an error representing a 404 Not Found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewConflictError creates an error representing a 409 Conflict.
// Useful for cases like trying to create a resource that already exists.
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Message: message,
	}
}

// NewInternalServerError creates an error representing a 500 Internal Server Error.
// This should be used for unexpected server-side issues.
func NewInternalServerError() *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: "An unexpected error occurred. Please try again later.",
	}
}

// --- Error Translation ---

// FromServiceError translates errors from the service/store layer into
// specific APIError values. This keeps the HTTP handlers decoupled from the
// underlying implementations, and guarantees that an expired share link is
// never conflated with an invalid one, nor an authorization failure with a
// missing resource.
func FromServiceError(err error) *APIError {
	switch {
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrInvalidUserToken):
		return NewBadRequestError(err.Error())

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountNotVerified):
		return NewUnauthorizedError(err.Error())

	case errors.Is(err, crypto.ErrShareTokenExpired):
		return NewUnauthorizedError("Share link has expired")

	case errors.Is(err, crypto.ErrShareTokenInvalid):
		return NewNotFoundError("Shared folder not found")

	case errors.Is(err, store.ErrNotFound):
		return NewNotFoundError("The requested resource could not be found")

	case errors.Is(err, store.ErrConflict):
		return NewConflictError("A conflict occurred with the current state of the resource")
	}

	// A signing failure is fatal for the request; the gateway already
	// retried. Do not leak the underlying error to the client.
	var signErr *storage.SigningError
	if errors.As(err, &signErr) {
		return NewInternalServerError()
	}

	// For any other untranslatable error, return a generic internal server
	// error to avoid leaking implementation details.
	return NewInternalServerError()
}
