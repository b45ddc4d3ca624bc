// Package storage is the object store gateway: a thin MinIO wrapper exposing
// availability probing plus blob put/get under path-like keys.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docstream-ai/docstream/pkg/common/config"
	"github.com/docstream-ai/docstream/pkg/common/logger"
)

type Gateway struct {
	client *minio.Client
	bucket string
}

// NewGateway connects to MinIO and makes sure the bucket exists. Bucket
// provisioning is best-effort startup work; a failure here is logged and the
// per-request availability probe decides whether uploads are accepted.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	g := &Gateway{client: client, bucket: cfg.MinioBucket}
	g.ensureBucket(context.Background())
	return g, nil
}

func (g *Gateway) ensureBucket(ctx context.Context) {
	exists, err := g.client.BucketExists(ctx, g.bucket)
	if err != nil {
		logger.Log.WithError(err).WithField("bucket", g.bucket).Warn("could not check bucket")
		return
	}
	if exists {
		return
	}
	if err := g.client.MakeBucket(ctx, g.bucket, minio.MakeBucketOptions{}); err != nil {
		logger.Log.WithError(err).WithField("bucket", g.bucket).Warn("could not create bucket")
		return
	}
	logger.Log.WithField("bucket", g.bucket).Info("Created storage bucket")
}

// IsAvailable is a best-effort liveness probe. Every fault collapses to false.
func (g *Gateway) IsAvailable(ctx context.Context) bool {
	_, err := g.client.BucketExists(ctx, g.bucket)
	return err == nil
}

func (g *Gateway) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := g.client.PutObject(ctx, g.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("storing object %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := g.client.GetObject(ctx, g.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", key, err)
	}
	return data, nil
}
