package storage

import (
	"context"
	"fmt"
	"time"

	appconfig "github.com/mk1945/cloudvault/internal/config"
)

// mockBaseURL is the host used for synthesized URLs. It is intentionally not
// resolvable; nothing is ever uploaded or downloaded in mock mode.
const mockBaseURL = "https://mock-s3.local"

// MockGateway deterministically synthesizes URLs that embed the key and, for
// downloads, an expiry timestamp. It performs no network calls and never
// returns a SigningError, which makes it suitable for local development and
// tests without live storage credentials.
type MockGateway struct {
	downloadURLTTL time.Duration
	now            func() time.Time
}

// NewMockGateway creates a MockGateway using the wall clock.
func NewMockGateway(cfg appconfig.Storage) *MockGateway {
	return &MockGateway{
		downloadURLTTL: cfg.DownloadURLTTL,
		now:            time.Now,
	}
}

// NewMockGatewayAt creates a MockGateway with an injected clock, so tests can
// assert the exact expiry embedded in download URLs.
func NewMockGatewayAt(cfg appconfig.Storage, now func() time.Time) *MockGateway {
	return &MockGateway{
		downloadURLTTL: cfg.DownloadURLTTL,
		now:            now,
	}
}

// IssueUploadURL returns a fake upload URL embedding the key.
func (g *MockGateway) IssueUploadURL(_ context.Context, key, _ string) (string, error) {
	return fmt.Sprintf("%s/%s", mockBaseURL, key), nil
}

// IssueDownloadURL returns a fake download URL embedding the key and the
// expiry as unix milliseconds.
func (g *MockGateway) IssueDownloadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = g.downloadURLTTL
	}
	expires := g.now().Add(ttl).UnixMilli()
	return fmt.Sprintf("%s/download/%s?expires=%d", mockBaseURL, key, expires), nil
}
