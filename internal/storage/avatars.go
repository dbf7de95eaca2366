// internal/storage/avatars.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ratedrps/ratedrps-service/internal/config"
)

var (
	ErrNotFound         = errors.New("avatar not found")
	ErrTooLarge         = errors.New("avatar exceeds size limit")
	ErrUnsupportedImage = errors.New("unsupported avatar content type")
)

// AllowedContentTypes are the accepted avatar MIME types.
var AllowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ObjectAPI is the subset of *s3.Client the avatar store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Avatars stores profile images in an S3-compatible bucket.
type Avatars struct {
	client        ObjectAPI
	bucket        string
	publicBaseURL string
	maxBytes      int64

	Now func() time.Time
}

func NewAvatars(client ObjectAPI, bucket, publicBaseURL string, maxBytes int64) *Avatars {
	return &Avatars{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		Now:           time.Now,
	}
}

// NewS3Client builds a client with static credentials. A non-empty Endpoint targets an
// S3-compatible service (R2, MinIO, Supabase storage) with path-style addressing.
func NewS3Client(ctx context.Context, cfg config.AvatarConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Validate checks an upload before anything is sent to the bucket.
func (a *Avatars) Validate(contentType string, size int64) error {
	if size > a.maxBytes {
		return ErrTooLarge
	}
	if _, ok := AllowedContentTypes[strings.ToLower(contentType)]; !ok {
		return ErrUnsupportedImage
	}
	return nil
}

// ObjectKey is "<player>/<player>-<unix millis>.<ext>". The extension comes from the uploaded
// filename and defaults to jpg.
func (a *Avatars) ObjectKey(playerID, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%s-%d.%s", playerID, playerID, a.Now().UnixMilli(), ext)
}

// Upload validates and stores an avatar, returning its object key and public URL.
func (a *Avatars) Upload(ctx context.Context, playerID, filename, contentType string, size int64, body io.Reader) (key, url string, err error) {
	if err := a.Validate(contentType, size); err != nil {
		return "", "", err
	}
	key = a.ObjectKey(playerID, filename)

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(strings.ToLower(contentType)),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("max-age=3600"),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return key, a.PublicURL(key), nil
}

// PublicURL is where clients can fetch key directly.
func (a *Avatars) PublicURL(key string) string {
	if a.publicBaseURL == "" {
		return "/api/users/avatar/" + key
	}
	return a.publicBaseURL + "/" + key
}

// Download opens the stored object. The caller closes the body.
func (a *Avatars) Download(ctx context.Context, key string) (body io.ReadCloser, contentType string, err error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to download avatar %s: %w", key, err)
	}
	contentType = "image/jpeg"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}
