package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds S3/MinIO connection configuration.
type S3Config struct {
	// Endpoint is the S3/MinIO endpoint (e.g., "localhost:9000").
	Endpoint string

	// AccessKey is the access key.
	AccessKey string

	// SecretKey is the secret key.
	SecretKey string

	// UseSSL enables SSL for the connection.
	UseSSL bool

	// Region is the S3 region (optional for MinIO).
	Region string
}

// S3Store implements ObjectStore over one S3/MinIO bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewS3Store creates an ObjectStore handle bound to bucket.
func NewS3Store(cfg S3Config, bucket string, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Store{
		client: client,
		bucket: bucket,
		logger: logger.With("component", "s3-store", "bucket", bucket),
	}, nil
}

// List returns up to maxKeys objects under prefix.
func (s *S3Store) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxKeys,
	}

	var infos []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, classify(prefix, obj.Err)
		}
		infos = append(infos, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
		if len(infos) >= maxKeys {
			break
		}
	}

	s.logger.Debug("listed objects", "prefix", prefix, "count", len(infos))
	return infos, nil
}

// Get returns the full content of the object at key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify(key, err)
	}

	s.logger.Debug("fetched object", "key", key, "size", len(data))
	return data, nil
}

// Head returns object metadata without fetching content.
func (s *S3Store) Head(ctx context.Context, key string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, classify(key, err)
	}
	return ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		LastModified: stat.LastModified,
	}, nil
}

// classify maps a minio error to a StoreError kind.
func classify(key string, err error) *StoreError {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return NewStoreError(KindNotFound, key, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return NewStoreError(KindAccessDenied, key, err)
	default:
		return NewStoreError(KindTransport, key, err)
	}
}

// Ensure S3Store implements ObjectStore.
var _ ObjectStore = (*S3Store)(nil)
