package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"casedesk_backend/internal/archive/repository"
	"casedesk_backend/platform/config"
)

// MinIOExporter mirrors archive snapshots as JSON documents to an object
// store bucket.
type MinIOExporter struct {
	client *minio.Client
	bucket string
}

// NewMinIOExporter creates the exporter and ensures the target bucket
// exists.
func NewMinIOExporter(ctx context.Context, cfg config.ArchiveExportConfig) (*MinIOExporter, error) {
	if !cfg.IsArchiveExportEnabled() {
		return nil, fmt.Errorf("archive export is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exporter := &MinIOExporter{client: client, bucket: cfg.GetArchiveBucket()}
	if err := exporter.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return exporter, nil
}

func (e *MinIOExporter) ensureBucket(ctx context.Context) error {
	exists, err := e.client.BucketExists(ctx, e.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := e.client.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", e.bucket, err)
		}
	}
	return nil
}

// Export writes the snapshot under <record_type>/<original_id>/<archive_id>.json.
// Keys include the archive id, so re-archiving the same account never
// overwrites an earlier snapshot.
func (e *MinIOExporter) Export(ctx context.Context, record repository.ArchivedRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", record.RecordType, record.OriginalID, record.ID.String())
	_, err = e.client.PutObject(ctx, e.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}
	return nil
}

var _ Exporter = (*MinIOExporter)(nil)
