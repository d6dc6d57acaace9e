package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// downloadTokenKey is the object metadata key Firebase Storage reads download tokens from.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// BucketStore implements BlobStore on a Cloud Storage bucket and hands out Firebase Storage
// download URLs, the same URLs the web client's getDownloadURL produced.
type BucketStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewBucketStore wraps a bucket handle. bucketName is used to build download URLs.
func NewBucketStore(bucket *storage.BucketHandle, bucketName string) (*BucketStore, error) {
	if bucket == nil {
		return nil, errors.New("storage bucket is not initialized")
	}
	if bucketName == "" {
		return nil, errors.New("storage bucket name cannot be empty")
	}
	return &BucketStore{bucket: bucket, bucketName: bucketName}, nil
}

// Put uploads data under key, replacing any existing object, and attaches a fresh download
// token.
func (s *BucketStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: uuid.NewString()}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object '%s': %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object '%s': %w", key, err)
	}
	return nil
}

// URL returns the token-bearing download URL of key.
func (s *BucketStore) URL(ctx context.Context, key string) (string, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("object '%s': %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read attributes of object '%s': %w", key, err)
	}
	token := attrs.Metadata[downloadTokenKey]
	if token == "" {
		return "", fmt.Errorf("object '%s' has no download token", key)
	}
	return DownloadURL(s.bucketName, key, token), nil
}

// Delete removes key. A missing object is not an error.
func (s *BucketStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object '%s': %w", key, err)
	}
	return nil
}

// DownloadURL builds a Firebase Storage download URL.
func DownloadURL(bucketName, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucketName, url.PathEscape(key), url.QueryEscape(token))
}
