package storage

import (
	"context"
	"path"
	"strings"

	"folio/config"
	"folio/logging"
)

// Archive keeps untransformed originals next to the asset store copies
type Archive interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// OriginalKey is where the original of a public id lives inside an archive.
// The content type travels with the object, not in the key.
func OriginalKey(publicID string) string {
	return path.Join("originals", strings.Trim(publicID, "/"))
}

// NewArchiveFromConfig returns nil when originals are not archived.
// An S3 bucket takes precedence over a local directory.
func NewArchiveFromConfig() (Archive, error) {
	if !config.STORE_ORIGINALS {
		return nil, nil
	}
	if config.ARCHIVE_S3_BUCKET != "" {
		logging.Info("Archiving originals to s3://%s/%s", config.ARCHIVE_S3_BUCKET, config.ARCHIVE_S3_PREFIX)
		return NewS3Storage(S3Config{
			Bucket:   config.ARCHIVE_S3_BUCKET,
			Region:   config.ARCHIVE_S3_REGION,
			Endpoint: config.ARCHIVE_S3_ENDPOINT,
			Key:      config.ARCHIVE_S3_KEY,
			Secret:   config.ARCHIVE_S3_SECRET,
			Prefix:   config.ARCHIVE_S3_PREFIX,
		})
	}
	if config.ARCHIVE_DIR != "" {
		logging.Info("Archiving originals to %s", config.ARCHIVE_DIR)
		return NewDiskStorage(config.ARCHIVE_DIR), nil
	}
	return nil, nil
}
