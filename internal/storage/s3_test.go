package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testS3Config(endpoint string) S3Config {
	return S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}
}

func TestNewS3Storage(t *testing.T) {
	s, err := NewS3Storage(context.Background(), testS3Config("http://localhost:4566/"))
	require.NoError(t, err)

	assert.Equal(t, "test-bucket", s.bucket)
	assert.Equal(t, "us-east-1", s.region)
	assert.Equal(t, "http://localhost:4566", s.endpoint)
}

func TestS3Storage_ObjectURL(t *testing.T) {
	s := &S3Storage{bucket: "b", region: "eu-west-1"}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k/book.wav", s.objectURL("k/book.wav"))

	s.endpoint = "http://minio:9000"
	assert.Equal(t, "http://minio:9000/b/k/book.wav", s.objectURL("k/book.wav"))
}

func TestS3Storage_Publish_MockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/test-bucket/books/test-key.wav", r.URL.Path)
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "test content", string(body))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s, err := NewS3Storage(context.Background(), testS3Config(server.URL))
	require.NoError(t, err)

	url, err := s.Publish(context.Background(), "books/test-key.wav", strings.NewReader("test content"))
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/test-bucket/books/test-key.wav", url)
}

func TestS3Storage_Publish_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code></Error>`))
	}))
	defer server.Close()

	s, err := NewS3Storage(context.Background(), testS3Config(server.URL))
	require.NoError(t, err)

	_, err = s.Publish(context.Background(), "k.wav", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestS3Storage_Publish_InvalidKey(t *testing.T) {
	s, err := NewS3Storage(context.Background(), testS3Config("http://localhost:4566"))
	require.NoError(t, err)

	_, err = s.Publish(context.Background(), "../k.wav", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
