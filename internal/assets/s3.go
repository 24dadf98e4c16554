package assets

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"photolink/internal/failure"
	"photolink/internal/logging"
)

// ObjectLister lists object keys under a prefix. It exists so tests can feed
// a fixed listing without a bucket.
type ObjectLister interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// S3Config describes the bucket mirroring the asset pool.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// BucketLister lists keys through minio-go. Object bodies are never read.
type BucketLister struct {
	api    *minio.Client
	bucket string
}

var _ ObjectLister = (*BucketLister)(nil)

// NewBucketLister connects a lister to the configured bucket.
func NewBucketLister(cfg S3Config) (*BucketLister, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "assets", "s3 client", cfg.Endpoint, err)
	}
	return &BucketLister{api: client, bucket: cfg.Bucket}, nil
}

// ListKeys returns the keys directly under prefix (non-recursive).
func (l *BucketLister) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}
	var keys []string
	for obj := range l.api.ListObjects(ctx, l.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// BuildS3 builds the snapshot from a bucket listing. Only keys directly under
// prefix count, mirroring the flat local directory.
func BuildS3(ctx context.Context, lister ObjectLister, prefix string, opts Options) (*Index, error) {
	if lister == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "assets", "s3 scan", "no object lister", nil)
	}
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	keys, err := lister.ListKeys(ctx, prefix)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInput, "assets", "s3 scan", fmt.Sprintf("list prefix %q", prefix), err)
	}

	exclude := opts.excluded()
	names := make([]string, 0, len(keys))
	skipped := 0
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		isDir := strings.HasSuffix(rest, "/") || strings.Contains(rest, "/")
		name := path.Base(rest)
		if !keepEntry(name, isDir, exclude) {
			skipped++
			continue
		}
		names = append(names, name)
	}

	idx := NewIndex(names...)
	logger := logging.NewComponentLogger(opts.Logger, "assets")
	logger.Info("asset index built",
		logging.String(logging.FieldEventType, "asset_index_built"),
		logging.String("source", "s3"),
		logging.String("prefix", prefix),
		logging.Int("asset_count", idx.Len()),
		logging.Int("skipped_count", skipped),
	)
	return idx, nil
}
