package data

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/daffaabp/storage-management/internal/file/biz"
)

// BlobStoreConfig holds what the adapter needs beyond the client
type BlobStoreConfig struct {
	Bucket string
	// PublicBaseURL is the URL prefix handed out for stored objects,
	// e.g. "https://cdn.example.com/drive". When empty, URLs are
	// derived from the MinIO endpoint and bucket.
	PublicBaseURL string
	Endpoint      string
	UseSSL        bool
}

// MinIOBlobStore implements biz.BlobStore on a MinIO bucket
type MinIOBlobStore struct {
	client *minio.Client
	config BlobStoreConfig
}

// NewMinIOBlobStore creates a MinIO-backed blob store
func NewMinIOBlobStore(client *minio.Client, cfg BlobStoreConfig) *MinIOBlobStore {
	return &MinIOBlobStore{client: client, config: cfg}
}

// Put stores the bytes under a fresh object key and reports the size
// the store accepted
func (s *MinIOBlobStore) Put(ctx context.Context, name string, data []byte) (*biz.BlobInfo, error) {
	objectKey := uuid.New().String()

	info, err := s.client.PutObject(ctx, s.config.Bucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  http.DetectContentType(data),
			UserMetadata: map[string]string{"x-amz-meta-filename": name},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	return &biz.BlobInfo{
		BlobID:     objectKey,
		StoredName: name,
		Size:       info.Size,
	}, nil
}

// Delete removes a stored object
func (s *MinIOBlobStore) Delete(ctx context.Context, blobID string) error {
	err := s.client.RemoveObject(ctx, s.config.Bucket, blobID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// URLFor derives the fetchable URL of a stored object. Pure given the
// store configuration.
func (s *MinIOBlobStore) URLFor(blobID string) string {
	if s.config.PublicBaseURL != "" {
		return s.config.PublicBaseURL + "/" + blobID
	}

	scheme := "http"
	if s.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.config.Endpoint, s.config.Bucket, blobID)
}
