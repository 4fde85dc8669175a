package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mk1945/cloudvault/internal/platform/crypto"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CtxKey is a custom type for context keys to avoid collisions.
type CtxKey string

const (
	// UserIDKey is the key for storing the user's ID in the request context.
	UserIDKey CtxKey = "userID"
	// EmailKey is the key for storing the user's email in the request context.
	EmailKey CtxKey = "email"
)

// AuthMiddleware holds the dependencies for the authentication middleware.
type AuthMiddleware struct {
	tokenSvc crypto.TokenGenerator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokenSvc crypto.TokenGenerator) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// RequireAuth checks for a valid access token in the Authorization header
// ("Bearer <token>"). If found, it adds the user's ID and email to the
// request context for downstream handlers.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("Missing authentication token"))
			return
		}

		claims, err := m.tokenSvc.Verify(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("Invalid authentication token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, EmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext is a helper function to safely retrieve the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (bson.ObjectID, bool) {
	userID, ok := ctx.Value(UserIDKey).(bson.ObjectID)
	return userID, ok
}
