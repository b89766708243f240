package storage

import (
	"context"
	"net/url"
	"testing"

	"auconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *S3Store {
	t.Helper()
	store, err := NewS3Store(context.Background(), Config{
		Bucket:       "auconnect-media",
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return store
}

func TestNewS3Store_RequiresBucketAndRegion(t *testing.T) {
	_, err := NewS3Store(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)

	_, err = NewS3Store(context.Background(), Config{Bucket: "b"})
	assert.Error(t, err)
}

func TestS3Store_PresignRead(t *testing.T) {
	store := newTestStore(t)

	raw, err := store.PresignRead(context.Background(), "posts/42/photo.jpg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/auconnect-media/posts/42/photo.jpg", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Store_PresignReadRejectsBadNames(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "   ", "/", "../secrets", "a/../../b"} {
		_, err := store.PresignRead(context.Background(), name)
		require.Error(t, err, name)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err), name)
	}
}
