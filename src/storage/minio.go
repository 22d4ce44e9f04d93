package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tripload/src/config"
)

// MinioStore implements Store on top of minio-go.
type MinioStore struct {
	client *minio.Client
	region string
}

// NewMinioStore creates a MinioStore. No request is made until first use.
func NewMinioStore(cfg config.StorageConfig, creds config.Credentials) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		region: cfg.Region,
	}, nil
}

// BucketExists checks whether the bucket is present.
func (minioStore *MinioStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := minioStore.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("checking bucket %s: %w", bucket, err)
	}

	return exists, nil
}

// MakeBucket creates the bucket.
func (minioStore *MinioStore) MakeBucket(ctx context.Context, bucket string) error {
	err := minioStore.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: minioStore.region})
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", bucket, err)
	}

	return nil
}

// PutObject streams body into the bucket. With UnknownSize minio-go switches
// to a multipart upload buffering one part at a time.
func (minioStore *MinioStore) PutObject(
	ctx context.Context,
	bucket, object string,
	body io.Reader,
	size int64,
	opts PutOptions,
) (UploadInfo, error) {
	info, err := minioStore.client.PutObject(ctx, bucket, object, body, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
		PartSize:    opts.PartSize,
	})
	if err != nil {
		return UploadInfo{}, fmt.Errorf("putting object: %w", err)
	}

	return UploadInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		Size:   info.Size,
	}, nil
}
