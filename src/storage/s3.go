package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"tripload/src/config"
)

const defaultRegion = "us-east-1"

// S3Store implements Store for S3 and S3-compatible services via aws-sdk-go-v2.
type S3Store struct {
	client *s3.Client
	region string
}

// NewS3Store creates an S3Store. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.StorageConfig, creds config.Credentials) (*S3Store, error) {
	client, err := createS3Client(ctx, cfg, creds)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}

	return &S3Store{
		client: client,
		region: regionOrDefault(cfg.Region),
	}, nil
}

func regionOrDefault(region string) string {
	if region == "" {
		return defaultRegion
	}

	return region
}

// endpointURL turns a host:port endpoint into a base URL.
func endpointURL(endpoint string, secure bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}

	if secure {
		return "https://" + endpoint
	}

	return "http://" + endpoint
}

func createS3Client(ctx context.Context, storage config.StorageConfig, creds config.Credentials) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(regionOrDefault(storage.Region)),
	}

	if creds.AccessKey != "" && creds.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	// Custom endpoint for MinIO support.
	clientOpts := []func(*s3.Options){}
	if storage.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpointURL(storage.Endpoint, storage.Secure))
			o.UsePathStyle = true // Required for MinIO.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		})
	}

	return s3.NewFromConfig(cfg, clientOpts...), nil
}

// BucketExists checks whether the bucket is present.
func (s3Store *S3Store) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := s3Store.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("head bucket %s: %w", bucket, err)
	}

	return true, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}

	return false
}

// MakeBucket creates the bucket.
func (s3Store *S3Store) MakeBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	// us-east-1 must not be sent as a location constraint.
	if s3Store.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s3Store.region),
		}
	}

	_, err := s3Store.client.CreateBucket(ctx, input)
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", bucket, err)
	}

	return nil
}

// PutObject streams body into the bucket through the multipart upload
// manager. Parts are uploaded one at a time so at most one part is buffered.
func (s3Store *S3Store) PutObject(
	ctx context.Context,
	bucket, object string,
	body io.Reader,
	_ int64,
	opts PutOptions,
) (UploadInfo, error) {
	uploader := manager.NewUploader(s3Store.client, func(u *manager.Uploader) {
		if opts.PartSize > 0 {
			u.PartSize = int64(opts.PartSize)
		}

		u.Concurrency = 1
	})

	counter := &countingReader{reader: body}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
		Body:   counter,
	}

	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	output, err := uploader.Upload(ctx, input)
	if err != nil {
		return UploadInfo{}, fmt.Errorf("putting object: %w", err)
	}

	return UploadInfo{
		Bucket: bucket,
		Key:    object,
		ETag:   strings.Trim(aws.ToString(output.ETag), `"`),
		Size:   counter.n,
	}, nil
}

type countingReader struct {
	reader io.Reader
	n      int64
}

func (countingReader *countingReader) Read(p []byte) (int, error) {
	n, err := countingReader.reader.Read(p)
	countingReader.n += int64(n)

	return n, err
}
