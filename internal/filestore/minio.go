package filestore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig configures an S3-compatible disk.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioDisk stores files as objects in a single bucket.
type MinioDisk struct {
	client *minio.Client
	bucket string
}

// NewMinioDisk connects to the endpoint and makes sure the bucket exists.
func NewMinioDisk(ctx context.Context, cfg MinioConfig) (*MinioDisk, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioDisk{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(p string) string {
	return path.Clean("/" + p)[1:]
}

func (d *MinioDisk) Store(ctx context.Context, p string, content []byte) (string, error) {
	_, err := d.client.PutObject(ctx, d.bucket, objectKey(p), bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(content)})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", p, err)
	}
	return p, nil
}

func (d *MinioDisk) Delete(ctx context.Context, p string) (bool, error) {
	exists, err := d.Exists(ctx, p)
	if err != nil || !exists {
		return false, err
	}
	if err := d.client.RemoveObject(ctx, d.bucket, objectKey(p), minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object %s: %w", p, err)
	}
	return true, nil
}

// Move copies the object server-side and removes the source.
func (d *MinioDisk) Move(ctx context.Context, from, to string) (bool, error) {
	exists, err := d.Exists(ctx, from)
	if err != nil || !exists {
		return false, err
	}

	_, err = d.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: d.bucket, Object: objectKey(to)},
		minio.CopySrcOptions{Bucket: d.bucket, Object: objectKey(from)},
	)
	if err != nil {
		return false, fmt.Errorf("copy object %s to %s: %w", from, to, err)
	}
	if err := d.client.RemoveObject(ctx, d.bucket, objectKey(from), minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove moved object %s: %w", from, err)
	}
	return true, nil
}

func (d *MinioDisk) Exists(ctx context.Context, p string) (bool, error) {
	_, err := d.client.StatObject(ctx, d.bucket, objectKey(p), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat object %s: %w", p, err)
}
