package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"car-rental-api/internal/core/config"
	"car-rental-api/pkg/utils"
)

var ErrNotImage = errors.New("file is not an image")

// ImageStore 车辆图片对象存储
type ImageStore interface {
	PutImage(ctx context.Context, data []byte) (string, error)
}

// MinioStore 对象键为 cars/<id><ext>，返回可直接写入 image1/image2 的 URL
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinio Endpoint 为空返回 (nil, nil)
func NewMinio(ctx context.Context, c config.Storage) (*MinioStore, error) {
	if c.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	base := c.PublicBaseURL
	if base == "" {
		scheme := "http"
		if c.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
	}
	return &MinioStore{client: client, bucket: c.Bucket, baseURL: strings.TrimRight(base, "/")}, nil
}

func (s *MinioStore) PutImage(ctx context.Context, data []byte) (string, error) {
	mime, ext, err := SniffImage(data)
	if err != nil {
		return "", err
	}
	key := "cars/" + utils.NewID() + ext
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// SniffImage 按内容判断类型，不信任客户端给的 Content-Type
func SniffImage(data []byte) (mime, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrNotImage
	}
	m := mimetype.Detect(data)
	if !strings.HasPrefix(m.String(), "image/") {
		return m.String(), "", ErrNotImage
	}
	return m.String(), m.Extension(), nil
}
