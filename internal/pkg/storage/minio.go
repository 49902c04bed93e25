package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/chequeflow/backend/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"k8s.io/klog/v2"
)

// MinIOSink 导出到对象存储，key 带时间前缀避免覆盖
type MinIOSink struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinIOSink 创建客户端并确保 bucket 存在
func NewMinIOSink(ctx context.Context, cfg config.MinIOConfig) (*MinIOSink, error) {
	if !cfg.Enabled() {
		return nil, ErrSinkUnavailable
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, xerr := mc.BucketExists(ctx, cfg.Bucket)
		if xerr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	klog.V(6).Infof("MinIO 导出已启用: endpoint=%s, bucket=%s", cfg.Endpoint, cfg.Bucket)
	return &MinIOSink{client: mc, bucket: cfg.Bucket, now: time.Now}, nil
}

func (s *MinIOSink) Name() string {
	return "minio"
}

func (s *MinIOSink) Put(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	key := ObjectKey(s.now(), fileName)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	klog.V(6).Infof("文档已导出到 MinIO: bucket=%s, key=%s, size=%d", s.bucket, key, len(data))
	return key, nil
}

// ObjectKey 形如 documents/20240102T150405/batch.xlsx
func ObjectKey(at time.Time, fileName string) string {
	return fmt.Sprintf("documents/%s/%s", at.UTC().Format("20060102T150405"), SanitizeFileName(fileName))
}
