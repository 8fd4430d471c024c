// Package storage uploads run outputs to the configured remote object
// storage endpoint. It speaks the S3 protocol and therefore works with any
// S3-compatible service.
package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/config"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
)

// Client wraps the object-storage connection for run output uploads.
type Client struct {
	mc  *minio.Client
	cfg config.Storage
}

// New creates a storage client for the configured endpoint. Credentials
// fall back to the environment when not configured explicitly.
func New(cfg config.Storage) (*Client, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvMinio()
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client for %s: %w", cfg.Endpoint, err)
	}
	return &Client{mc: mc, cfg: cfg}, nil
}

// ObjectKey returns the object key for a run output file.
func ObjectKey(prefix string, run int, file string) string {
	return path.Join(prefix, strconv.Itoa(run), filepath.Base(file))
}

// UploadRunOutput uploads the output file of a run and returns its URI.
func (c *Client) UploadRunOutput(ctx context.Context, run int, source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("cannot access output file %s: %w", source, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("output %s is a directory, not a file", source)
	}

	contentType := mime.TypeByExtension(filepath.Ext(source))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := ObjectKey(c.cfg.Prefix, run, source)
	start := time.Now()
	result, err := c.mc.FPutObject(ctx, c.cfg.Bucket, key, source, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload of %s failed: %w", source, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", c.cfg.Bucket, key)
	logger.Info(ctx, "Uploaded run output",
		"run", run,
		"uri", uri,
		"size", result.Size,
		"etag", result.ETag,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return uri, nil
}
