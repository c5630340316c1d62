// Package s3 provides an object store adapter for S3-compatible storage.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// documentContentType is the content type set on uploaded documents.
const documentContentType = "application/pdf"

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// Config holds S3 connection configuration.
type Config struct {
	// Endpoint is the S3 host:port, without scheme.
	Endpoint string

	// AccessKey and SecretKey are the credentials.
	AccessKey string
	SecretKey string

	// Bucket is the bucket holding documents.
	Bucket string

	// UseSSL selects https for the endpoint.
	UseSSL bool
}

// ObjectStore implements driven.ObjectStore on an S3-compatible backend.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// NewObjectStore connects to the S3 endpoint and ensures the bucket exists.
func NewObjectStore(ctx context.Context, cfg Config) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: s3 endpoint is required", domain.ErrInvalidInput)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", domain.ErrInvalidInput)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// Put stores data under key, overwriting any existing object.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: documentContentType})
	if err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}
	return nil
}

// Get returns the bytes stored under key, or domain.ErrNotFound.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting object %s: %w", key, err)
	}
	defer obj.Close()

	// GetObject is lazy: missing keys surface on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object under key. Deleting an absent key is not an
// error, matching S3 semantics.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object %s: %w", key, err)
	}
	return nil
}

// List returns objects whose keys begin with prefix.
func (s *ObjectStore) List(ctx context.Context, prefix string) ([]driven.ObjectInfo, error) {
	var infos []driven.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing objects under %s: %w", prefix, obj.Err)
		}
		infos = append(infos, driven.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return infos, nil
}

// PresignedURL mints a time-limited access URL for key.
func (s *ObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return u.String(), nil
}
