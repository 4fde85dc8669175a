package storage

import (
	"context"
	"time"

	appconfig "github.com/mk1945/cloudvault/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxSignAttempts bounds retries of the signing primitive. Signing is a local
// computation that rarely fails transiently, so one retry is enough.
const maxSignAttempts = 2

// S3Gateway signs URLs against real object storage using the AWS SDK presign
// client. It works against AWS S3 or any S3-compatible endpoint such as MinIO.
type S3Gateway struct {
	presign        *s3.PresignClient
	bucket         string
	uploadURLTTL   time.Duration
	downloadURLTTL time.Duration
}

// NewS3Gateway builds the presign client from static credentials in the
// storage configuration.
func NewS3Gateway(cfg appconfig.Storage) (*S3Gateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3ID,
			cfg.S3Key,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &S3Gateway{
		presign:        s3.NewPresignClient(client),
		bucket:         cfg.S3Bucket,
		uploadURLTTL:   cfg.UploadURLTTL,
		downloadURLTTL: cfg.DownloadURLTTL,
	}, nil
}

// IssueUploadURL presigns a PutObject request for the given key. The window is
// fixed by configuration (5 minutes by default).
func (g *S3Gateway) IssueUploadURL(ctx context.Context, key, contentType string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxSignAttempts; attempt++ {
		req, err := g.presign.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(g.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		}, s3.WithPresignExpires(g.uploadURLTTL))
		if err == nil {
			return req.URL, nil
		}
		lastErr = err
	}
	return "", &SigningError{Op: "upload", Key: key, Err: lastErr}
}

// IssueDownloadURL presigns a GetObject request for the given key.
func (g *S3Gateway) IssueDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = g.downloadURLTTL
	}

	var lastErr error
	for attempt := 0; attempt < maxSignAttempts; attempt++ {
		req, err := g.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(g.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(ttl))
		if err == nil {
			return req.URL, nil
		}
		lastErr = err
	}
	return "", &SigningError{Op: "download", Key: key, Err: lastErr}
}
