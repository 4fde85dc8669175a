package config

import (
	"os"
	"strconv"
	"time"
)

// Auth contains configuration related to authentication JWTs.
type Auth struct {
	AccessKey     string        // JWT signing key for access tokens
	RefreshKey    string        // JWT signing key for refresh tokens
	AccessKeyTTL  time.Duration // Time-to-live for access tokens
	RefreshKeyTTL time.Duration // Time-to-live for refresh tokens
}

// Mongo contains configuration for the MongoDB connection.
type Mongo struct {
	URL                  string // MongoDB connection URI
	Database             string // Database name
	DocumentDBBundlePath string // Path to a certificate bundle. Empty means don't use it.
}

// Storage contains configuration for the object storage gateway.
type Storage struct {
	S3ID           string        // AWS S3 Access Key ID
	S3Key          string        // AWS S3 Secret Access Key
	S3Bucket       string        // AWS S3 Bucket name
	S3Region       string        // AWS region
	S3Endpoint     string        // Custom endpoint, e.g. for MinIO. Empty means AWS.
	UploadURLTTL   time.Duration // Validity window for presigned upload URLs
	DownloadURLTTL time.Duration // Default validity window for download URLs
}

// Share contains configuration for folder share tokens.
type Share struct {
	Secret     string        // HS256 signing key for share tokens
	DefaultTTL time.Duration // TTL used when the caller does not supply one
	PublicTTL  time.Duration // TTL of per-file URLs inside a shared folder listing
}

// Email contains configuration for sending transactional emails.
type Email struct {
	Enabled bool
	APIKey  string // API key / password for the SMTP service
	Host    string // SMTP host
	Port    int    // SMTP port
	Address string // The "From" email address
}

// HTTP contains configuration for the HTTP server.
type HTTP struct {
	Port        string // Address for the server to listen on
	URL         string // Public-facing URL of the service
	FrontendURL string // Base URL of the front-end, used in share and email links
}

// Config is the top-level struct holding all application configuration. It is
// built once at startup and injected into each component; business logic never
// reads the environment directly.
type Config struct {
	Auth    Auth
	Mongo   Mongo
	Storage Storage
	Share   Share
	Email   Email
	HTTP    HTTP
}

// Load reads configuration from environment variables and returns a populated
// Config struct. It uses helper functions to read specific types and provide
// default values.
func Load() (*Config, error) {
	emailPort, err := getenvInt("EMAIL_PORT", 587)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Auth: Auth{
			AccessKey:     getenvStr("JWT_ACCESS_SECRET", ""),
			RefreshKey:    getenvStr("JWT_REFRESH_SECRET", ""),
			AccessKeyTTL:  20 * time.Minute,
			RefreshKeyTTL: 30 * 24 * time.Hour,
		},
		Mongo: Mongo{
			URL:                  getenvStr("MONGODB_URL", "mongodb://localhost:27017"),
			Database:             getenvStr("MONGODB_DATABASE", "cloudvault"),
			DocumentDBBundlePath: getenvStr("DOCUMENT_DB_BUNDLE_PATH", ""),
		},
		Storage: Storage{
			S3ID:           getenvStr("AWS_ACCESS_KEY_ID", ""),
			S3Key:          getenvStr("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:       getenvStr("AWS_BUCKET_NAME", ""),
			S3Region:       getenvStr("AWS_REGION", "us-east-1"),
			S3Endpoint:     getenvStr("AWS_ENDPOINT_URL", ""),
			UploadURLTTL:   5 * time.Minute,
			DownloadURLTTL: 15 * time.Minute,
		},
		Share: Share{
			Secret:     getenvStr("JWT_SECRET", ""),
			DefaultTTL: 10 * time.Minute,
			PublicTTL:  time.Hour,
		},
		Email: Email{
			Enabled: getenvBool("EMAIL_ENABLED", false),
			APIKey:  getenvStr("EMAIL_API_KEY", ""),
			Host:    getenvStr("EMAIL_HOST", ""),
			Port:    emailPort,
			Address: getenvStr("EMAIL_ADDRESS", ""),
		},
		HTTP: HTTP{
			Port:        getenvStr("PORT", ":8080"),
			URL:         getenvStr("URL", "http://localhost:8080"),
			FrontendURL: getenvStr("FRONTEND_URL", "http://localhost:5173"),
		},
	}
	return cfg, nil
}

// -------Helper Functions----------

// getenvStr retrieves a string environment variable or returns a default.
func getenvStr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getenvBool retrieves a boolean environment variable or returns a default value.
func getenvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getenvInt retrieves an integer environment variable or returns a default value.
func getenvInt(key string, fallback int) (int, error) {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i, nil
		} else {
			return 0, err
		}
	}
	return fallback, nil
}
