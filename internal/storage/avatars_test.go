// internal/storage/avatars_test.go
package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBucket is an in-memory ObjectAPI.
type memBucket struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = data
	b.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (b *memBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(b.types[aws.ToString(in.Key)]),
	}, nil
}

func newTestAvatars(b *memBucket) *Avatars {
	a := NewAvatars(b, "avatars", "https://cdn.example.com/", 5*1024*1024)
	a.Now = func() time.Time { return time.UnixMilli(1700000000123) }
	return a
}

func TestObjectKey(t *testing.T) {
	a := newTestAvatars(newMemBucket())
	assert.Equal(t, "u1/u1-1700000000123.png", a.ObjectKey("u1", "Me.PNG"))
	assert.Equal(t, "u1/u1-1700000000123.jpg", a.ObjectKey("u1", "noext"))
}

func TestValidate(t *testing.T) {
	a := newTestAvatars(newMemBucket())
	assert.NoError(t, a.Validate("image/webp", 10))
	assert.NoError(t, a.Validate("IMAGE/JPEG", 5*1024*1024))
	assert.ErrorIs(t, a.Validate("image/png", 5*1024*1024+1), ErrTooLarge)
	assert.ErrorIs(t, a.Validate("application/pdf", 10), ErrUnsupportedImage)
}

func TestUploadAndDownload(t *testing.T) {
	b := newMemBucket()
	a := newTestAvatars(b)
	ctx := context.Background()

	key, url, err := a.Upload(ctx, "u1", "face.gif", "image/gif", 4, strings.NewReader("GIF8"))
	require.NoError(t, err)
	assert.Equal(t, "u1/u1-1700000000123.gif", key)
	assert.Equal(t, "https://cdn.example.com/u1/u1-1700000000123.gif", url)

	body, ct, err := a.Download(ctx, key)
	require.NoError(t, err)
	defer body.Close()
	data, _ := io.ReadAll(body)
	assert.Equal(t, "GIF8", string(data))
	assert.Equal(t, "image/gif", ct)

	_, _, err = a.Download(ctx, "u1/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadRejectsBeforeSending(t *testing.T) {
	b := newMemBucket()
	a := newTestAvatars(b)
	_, _, err := a.Upload(context.Background(), "u1", "x.txt", "text/plain", 3, strings.NewReader("hey"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Empty(t, b.objects)
}

func TestPublicURLWithoutCDN(t *testing.T) {
	a := NewAvatars(newMemBucket(), "avatars", "", 1024)
	assert.Equal(t, "/api/users/avatar/u1/u1-1.png", a.PublicURL("u1/u1-1.png"))
}
