package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Share token verification outcomes. Expired and invalid are distinct on
// purpose: an expired link gets a different user-facing message than a
// tampered or malformed one.
var (
	ErrShareTokenExpired = errors.New("share token has expired")
	ErrShareTokenInvalid = errors.New("share token is invalid")
)

// shareResourceType is the type discriminator embedded in every share token.
// A token minted for any other resource type must fail verification even if
// it is otherwise well-formed.
const shareResourceType = "folder"

// ShareTokenService mints and verifies the signed capability tokens that
// grant public access to one folder. Tokens are self-contained: verification
// consults no stored state, which also means tokens cannot be revoked before
// expiry. The short default TTL is the only mitigation.
type ShareTokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewShareTokenService creates a ShareTokenService. defaultTTL is used when
// Issue is called with a non-positive TTL.
func NewShareTokenService(secret string, defaultTTL time.Duration) *ShareTokenService {
	return &ShareTokenService{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}
}

// ShareClaims is the signed payload of a folder share token.
type ShareClaims struct {
	FolderID string `json:"folderId"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// Issue mints a token scoped to folderID, expiring after ttl. It returns the
// token together with its expiry time.
func (s *ShareTokenService) Issue(folderID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	expiresAt := time.Now().Add(ttl)

	claims := &ShareClaims{
		FolderID: folderID,
		Type:     shareResourceType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign share token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the token's signature and expiry and returns the folder ID it
// grants access to. It fails with ErrShareTokenExpired when the signature is
// valid but the expiry has passed, and ErrShareTokenInvalid for a bad
// signature, malformed payload, or wrong type discriminator.
func (s *ShareTokenService) Verify(token string) (string, error) {
	claims := &ShareClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrShareTokenExpired
		}
		return "", ErrShareTokenInvalid
	}
	if !parsed.Valid || claims.Type != shareResourceType || claims.FolderID == "" {
		return "", ErrShareTokenInvalid
	}
	return claims.FolderID, nil
}
