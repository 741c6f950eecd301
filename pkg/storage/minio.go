// Package storage 提供了与对象存储服务（MinIO）交互的功能，用于归档上传的简历原件。
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	// 1. 初始化 MinIO 客户端
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}
	log.Info("MinIO 客户端初始化成功")

	// 2. 检查存储桶是否存在，不存在则创建
	ctx := context.Background()
	exists, err := MinioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}
	if exists {
		log.Infof("存储桶 '%s' 已存在", cfg.BucketName)
		return
	}
	log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
	if err := MinioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
		log.Fatal("创建 MinIO 存储桶失败", err)
	}
	log.Infof("存储桶 '%s' 创建成功", cfg.BucketName)
}

// ResumeObjectName 生成简历原件的对象名：resumes/<email>/<文件名>。
func ResumeObjectName(email, fileName string) string {
	return path.Join("resumes", url.PathEscape(email), path.Base(fileName))
}

// Store 是绑定到单个存储桶的简历原件存储。
type Store struct {
	Bucket string
}

// NewStore 创建一个使用全局 MinioClient 的 Store。
func NewStore(bucket string) *Store {
	return &Store{Bucket: bucket}
}

// Put 上传简历原件。
func (s *Store) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := MinioClient.PutObject(ctx, s.Bucket, objectName, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("上传对象 %s 失败: %w", objectName, err)
	}
	return nil
}

// Get 打开一个简历原件，调用方负责关闭。
func (s *Store) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	object, err := MinioClient.GetObject(ctx, s.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("下载对象 %s 失败: %w", objectName, err)
	}
	return object, nil
}

// Remove 删除一个简历原件。
func (s *Store) Remove(ctx context.Context, objectName string) error {
	return MinioClient.RemoveObject(ctx, s.Bucket, objectName, minio.RemoveObjectOptions{})
}

// PresignedURL 生成对象的临时下载链接。
func (s *Store) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := MinioClient.PresignedGetObject(ctx, s.Bucket, objectName, expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
