package storage

import (
	"context"
	"fmt"
	"io"

	"tripload/src/config"
)

// UnknownSize marks an object whose length is not known before upload.
// Stores stream such objects in PartSize chunks.
const UnknownSize int64 = -1

// Store represents the destination object store.
type Store interface {
	// BucketExists reports whether the bucket is present.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// MakeBucket creates the bucket with default settings.
	MakeBucket(ctx context.Context, bucket string) error

	// PutObject streams body into bucket/object. size may be UnknownSize.
	PutObject(ctx context.Context, bucket, object string, body io.Reader, size int64, opts PutOptions) (UploadInfo, error)
}

// PutOptions carries the per-object upload settings.
type PutOptions struct {
	PartSize    uint64
	ContentType string
}

// UploadInfo describes a stored object.
type UploadInfo struct {
	Bucket string
	Key    string
	ETag   string
	Size   int64
}

// NewStore creates a Store for the configured driver.
func NewStore(ctx context.Context, cfg config.StorageConfig, creds config.Credentials) (Store, error) {
	switch cfg.Driver {
	case config.DriverMinio:
		return NewMinioStore(cfg, creds)
	case config.DriverS3:
		return NewS3Store(ctx, cfg, creds)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
