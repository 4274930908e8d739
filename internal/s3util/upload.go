// Package s3util mirrors finished renditions to S3 so they can be
// served (or handed to platform publish APIs) without exposing the
// local uploads directory. Mirroring is optional; the pipeline works
// entirely from local disk when no bucket is configured.
package s3util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// renditionPrefix is the key prefix for mirrored rendition outputs.
const renditionPrefix = "renditions/"

// Mirror uploads renditions to a fixed S3 bucket.
type Mirror struct {
	client *s3.Client
	bucket string
}

// NewMirror creates a Mirror for the given bucket.
func NewMirror(client *s3.Client, bucket string) *Mirror {
	return &Mirror{client: client, bucket: bucket}
}

// UploadRendition uploads a local rendition file to S3 and returns its key.
func (m *Mirror) UploadRendition(ctx context.Context, localPath string) (string, error) {
	key := renditionPrefix + filepath.Base(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open rendition %s: %w", localPath, err)
	}
	defer f.Close()

	contentType := "video/mp4"
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &m.bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload rendition to s3://%s/%s: %w", m.bucket, key, err)
	}

	log.Info().
		Str("bucket", m.bucket).
		Str("key", key).
		Msg("Rendition mirrored to S3")
	return key, nil
}

// PresignedURL creates a pre-signed GET URL for a mirrored rendition.
// Platform publish APIs that pull media over HTTP (e.g. the Instagram
// container flow) need a publicly reachable URL.
func (m *Mirror) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(m.client)
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s: %w", m.bucket, key, err)
	}
	return result.URL, nil
}
