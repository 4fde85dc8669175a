package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mk1945/cloudvault/internal/service"
)

// UserHandler holds the dependencies for user-related HTTP handlers.
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler with its dependencies.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// --- Request/Response Structs ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *registerRequest) Validate() error {
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return errors.New("please include all fields")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("a valid email address is required")
	}
	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// --- Handlers ---

// Register handles POST /api/auth/register. The response is 200 even when the
// activation email fails to send; the account exists and the link can be
// recovered server-side.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError(err.Error()))
		return
	}

	if _, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account created. Check your email for the activation link."})
}

// Activate handles PUT /api/auth/activate/{token}.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Activate(r.Context(), r.PathValue("token")); err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account activated. You can now login."})
}

// Login handles POST /api/auth/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("Invalid request body"))
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:           user.ID.Hex(),
		Username:     user.Username,
		Email:        user.Email,
		Token:        accessToken,
		RefreshToken: refreshToken,
	})
}

// ForgotPassword handles POST /api/auth/forgotpassword.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("Invalid request body"))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent"})
}

// ResetPassword handles PUT /api/auth/resetpassword/{token}.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("Invalid request body"))
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("password must be at least 6 characters"))
		return
	}

	if err := h.service.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated. You can now login."})
}

// writeJSON is a small helper to serialize a response body and set headers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
