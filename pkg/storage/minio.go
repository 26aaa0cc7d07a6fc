// Package storage 提供与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"support-bot-go/internal/config"
	"support-bot-go/pkg/log"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
// 仅当知识库配置为从对象存储加载时才会被初始化。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端。
// 这里只构造客户端不做网络探测：对象不可读属于知识库的软失败，
// 由加载方降级处理，不应阻断进程启动。
func InitMinIO(cfg config.MinIOConfig) {
	var err error
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}

	log.Info("MinIO 客户端初始化成功")
}

// ReadObject 读取指定存储桶中对象的完整内容。
func ReadObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	obj, err := MinioClient.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucketName, objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucketName, objectName, err)
	}
	return data, nil
}
