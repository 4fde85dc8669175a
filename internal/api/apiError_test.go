package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/mk1945/cloudvault/internal/platform/crypto"
	"github.com/mk1945/cloudvault/internal/service"
	"github.com/mk1945/cloudvault/internal/storage"
	"github.com/mk1945/cloudvault/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"name required", service.ErrNameRequired, http.StatusBadRequest},
		{"invalid parent", service.ErrInvalidParent, http.StatusBadRequest},
		{"invalid user token", service.ErrInvalidUserToken, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"account not verified", service.ErrAccountNotVerified, http.StatusUnauthorized},
		{"share token expired", crypto.ErrShareTokenExpired, http.StatusUnauthorized},
		{"share token invalid", crypto.ErrShareTokenInvalid, http.StatusNotFound},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"conflict", store.ErrConflict, http.StatusConflict},
		{"signing failure", &storage.SigningError{Op: "upload", Key: "k", Err: context.DeadlineExceeded}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromServiceError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestFromServiceError_WrappedErrorsStillTranslate(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(errors.New("context"), store.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, FromServiceError(wrapped).Status)
}

// An expired share link and a tampered one must reach the client as different
// responses.
func TestFromServiceError_ExpiredVsInvalidShareToken(t *testing.T) {
	t.Parallel()

	expired := FromServiceError(crypto.ErrShareTokenExpired)
	invalid := FromServiceError(crypto.ErrShareTokenInvalid)

	assert.Equal(t, http.StatusUnauthorized, expired.Status)
	assert.Equal(t, http.StatusNotFound, invalid.Status)
	assert.NotEqual(t, expired.Message, invalid.Message)
}

func TestFromServiceError_InternalErrorHidesCause(t *testing.T) {
	t.Parallel()

	apiErr := FromServiceError(&storage.SigningError{Op: "upload", Key: "secret/key", Err: errors.New("credentials rejected")})
	assert.NotContains(t, apiErr.Message, "secret/key")
	assert.NotContains(t, apiErr.Message, "credentials rejected")
}

// The wire shape of an error is {"message": ...}; the status code travels in
// the HTTP header only.
func TestAPIError_JSONShape(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(NewNotFoundError("Shared folder not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Shared folder not found"}`, string(body))
}
