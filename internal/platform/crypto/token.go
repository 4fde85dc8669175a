package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidAuthToken is returned by Verify for any token that does not carry
// a valid signature and unexpired claims.
var ErrInvalidAuthToken = errors.New("invalid authentication token")

// TokenGenerator defines the interface for creating and verifying session JWTs.
type TokenGenerator interface {
	NewPair(user *domain.User) (accessToken, refreshToken string, err error)
	Verify(accessToken string) (*Claims, error)
}

// JWTGenerator is a concrete implementation of TokenGenerator using JWT.
type JWTGenerator struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTGenerator creates a new JWTGenerator.
// It requires the secrets and time-to-live (TTL) durations.
func NewJWTGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTGenerator {
	return &JWTGenerator{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Claims represents the standard JWT claims for the application.
type Claims struct {
	UserID bson.ObjectID `json:"userId"`
	Email  string        `json:"email"`
	jwt.RegisteredClaims
}

// NewPair generates a new access and refresh token for the given user.
func (g *JWTGenerator) NewPair(user *domain.User) (string, string, error) {
	accessToken, err := g.sign(user, g.accessSecret, g.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := g.sign(user, g.refreshSecret, g.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (g *JWTGenerator) sign(user *domain.User, secret []byte, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify parses an access token and returns its claims. Any parse, signature
// or expiry failure maps to ErrInvalidAuthToken; session tokens do not need
// the expired/invalid distinction that share tokens have.
func (g *JWTGenerator) Verify(accessToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.accessSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidAuthToken
	}
	return claims, nil
}
