package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mk1945/cloudvault/internal/config"
)

// Gateway issues time-bound presigned URLs for object storage. Both variants
// are stateless and side-effect free, so every method is safe to call
// concurrently without coordination.
type Gateway interface {
	// IssueUploadURL returns a URL authorizing one direct PUT of the object
	// identified by key, valid for a fixed short window. The content type
	// must match the Content-Type header of the eventual PUT.
	IssueUploadURL(ctx context.Context, key, contentType string) (string, error)

	// IssueDownloadURL returns a URL authorizing one GET of the object
	// identified by key, valid for ttl. A non-positive ttl selects the
	// configured default.
	IssueDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// SigningError reports a failure of the underlying URL-signing primitive.
// Callers must treat it as fatal for the request; the gateway has already
// performed its bounded retry by the time one surfaces.
type SigningError struct {
	Op  string // "upload" or "download"
	Key string
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("storage: signing %s URL for %q: %v", e.Op, e.Key, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// Mode selects the gateway variant. It is decided once at process start and
// passed explicitly to New; nothing inspects the environment afterwards.
type Mode int

const (
	// ModeS3 signs URLs against real object storage.
	ModeS3 Mode = iota
	// ModeMock synthesizes deterministic URLs with no network calls, for
	// environments without live storage credentials.
	ModeMock
)

// ModeFromConfig picks the gateway mode from the presence of credentials.
func ModeFromConfig(cfg config.Storage) Mode {
	if cfg.S3ID == "" || cfg.S3Key == "" || cfg.S3Bucket == "" {
		return ModeMock
	}
	return ModeS3
}

// New constructs the gateway for the given mode. Callers interact only with
// the Gateway interface; the success contract is identical in both modes.
func New(mode Mode, cfg config.Storage) (Gateway, error) {
	switch mode {
	case ModeMock:
		return NewMockGateway(cfg), nil
	default:
		return NewS3Gateway(cfg)
	}
}
