package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"

	"ai-resume-analyst/internal/pipeline"
	"ai-resume-analyst/pkg/log"
	"ai-resume-analyst/pkg/storage"
	"ai-resume-analyst/pkg/tasks"
	"ai-resume-analyst/pkg/tika"
)

// ErrInvalidEmail 表示上传时提供的员工邮箱无效。
var ErrInvalidEmail = errors.New("a valid employee email is required")

// supportedExtensions 是上传接口接受的简历格式。
var supportedExtensions = map[string]bool{".pdf": true, ".docx": true, ".md": true}

// TaskPublisher 把导入任务投递到消息队列。
type TaskPublisher func(ctx context.Context, task tasks.ResumeIngestTask) error

// UploadRequest 是一次简历上传。
type UploadRequest struct {
	FileName   string
	Size       int64
	Reader     io.Reader
	Email      string
	Name       string
	Role       string
	EmployeeID string
}

// UploadResult 描述已归档并排队等待导入的简历。
type UploadResult struct {
	ObjectName string `json:"object_name"`
	Email      string `json:"email"`
	Status     string `json:"status"`
}

// UploadService 接口定义了简历上传相关的业务操作。
type UploadService interface {
	UploadResume(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

type uploadService struct {
	store   ObjectStore
	publish TaskPublisher
}

// NewUploadService 创建一个新的 UploadService 实例。
func NewUploadService(store ObjectStore, publish TaskPublisher) UploadService {
	return &uploadService{store: store, publish: publish}
}

// UploadResume 将简历原件存入 MinIO，再投递 Kafka 任务由消费者异步导入。
func (s *uploadService) UploadResume(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, ErrInvalidEmail
	}
	email := strings.ToLower(addr.Address)
	ext := strings.ToLower(filepath.Ext(req.FileName))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrUnsupportedFile, ext)
	}

	objectName := storage.ResumeObjectName(email, req.FileName)
	log.Infof("[UploadService] 上传简历到MinIO, Object: %s, Size: %d", objectName, req.Size)
	if err := s.store.Put(ctx, objectName, req.Reader, req.Size, tika.DetectMimeType(req.FileName)); err != nil {
		log.Errorf("[UploadService] 上传简历失败, Object: %s, Error: %v", objectName, err)
		return nil, err
	}

	task := tasks.ResumeIngestTask{
		ObjectName: objectName,
		FileName:   filepath.Base(req.FileName),
		Email:      email,
		Name:       strings.TrimSpace(req.Name),
		Role:       strings.TrimSpace(req.Role),
		EmployeeID: strings.TrimSpace(req.EmployeeID),
	}
	if err := s.publish(ctx, task); err != nil {
		log.Errorf("[UploadService] 投递导入任务失败, Object: %s, Error: %v", objectName, err)
		return nil, fmt.Errorf("failed to queue ingest task: %w", err)
	}
	log.Infof("[UploadService] 导入任务已投递, Object: %s", objectName)
	return &UploadResult{ObjectName: objectName, Email: email, Status: "queued"}, nil
}
