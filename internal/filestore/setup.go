package filestore

import (
	"context"
	"path/filepath"

	"hrdesk/backend/internal/config"
)

// Setup registers the "private" and "public" local disks under the local
// root, plus "s3" when an endpoint and bucket are configured.
func Setup(ctx context.Context, cfg config.StorageConfig) (*Manager, error) {
	m := NewManager()
	m.Register("private", NewLocalDisk(filepath.Join(cfg.LocalRoot, "private")))
	m.Register("public", NewLocalDisk(filepath.Join(cfg.LocalRoot, "public")))

	if cfg.S3.Enabled() {
		disk, err := NewMinioDisk(ctx, MinioConfig{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		m.Register("s3", disk)
	}
	return m, nil
}
