// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/repository"
	"ai-resume-analyst/pkg/log"

	"gorm.io/gorm"
)

var (
	// ErrResumeNotFound 表示简历不存在。
	ErrResumeNotFound = errors.New("resume not found")
	// ErrResumeNotArchived 表示简历来自本地目录导入，对象存储中没有原件。
	ErrResumeNotArchived = errors.New("resume file is not archived in object storage")
)

// archivedPrefix 通过上传接口导入的简历，其 file_path 即 MinIO 对象名。
const archivedPrefix = "resumes/"

// ObjectStore 是简历原件的对象存储。
type ObjectStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectName string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ResumeDTO 是简历列表项，不包含全文。
type ResumeDTO struct {
	ID        uint              `json:"id"`
	FilePath  string            `json:"file_path"`
	Employee  model.EmployeeRef `json:"employee"`
	Archived  bool              `json:"archived"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DownloadInfoDTO 封装了文件下载链接所需的信息。
type DownloadInfoDTO struct {
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
}

// ResumeService 接口定义了简历管理相关的业务操作。
type ResumeService interface {
	ListResumes(ctx context.Context) ([]ResumeDTO, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	DeleteResume(ctx context.Context, id uint) error
	GenerateDownloadURL(ctx context.Context, id uint) (*DownloadInfoDTO, error)
}

type resumeService struct {
	resumeRepo   repository.ResumeRepository
	employeeRepo repository.EmployeeRepository
	index        repository.VectorIndex
	store        ObjectStore
}

// NewResumeService 创建一个新的 ResumeService 实例。
func NewResumeService(resumeRepo repository.ResumeRepository, employeeRepo repository.EmployeeRepository, index repository.VectorIndex, store ObjectStore) ResumeService {
	return &resumeService{
		resumeRepo:   resumeRepo,
		employeeRepo: employeeRepo,
		index:        index,
		store:        store,
	}
}

func (s *resumeService) ListResumes(ctx context.Context) ([]ResumeDTO, error) {
	resumes, err := s.resumeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ResumeDTO, 0, len(resumes))
	for _, r := range resumes {
		dtos = append(dtos, ResumeDTO{
			ID:        r.ID,
			FilePath:  r.FilePath,
			Employee:  r.Employee.Ref(),
			Archived:  isArchived(r.FilePath),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return dtos, nil
}

func (s *resumeService) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return s.employeeRepo.List(ctx)
}

// DeleteResume 删除简历及其分块，并尽力清理向量索引与对象存储中的原件。
func (s *resumeService) DeleteResume(ctx context.Context, id uint) error {
	resume, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resumeRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.index.DeleteResume(ctx, id); err != nil {
		log.Warnf("[ResumeService] 清理向量索引失败, ResumeID: %d, Error: %v", id, err)
	}
	if s.store != nil && isArchived(resume.FilePath) {
		if err := s.store.Remove(ctx, resume.FilePath); err != nil {
			log.Warnf("[ResumeService] 删除 MinIO 对象失败, Object: %s, Error: %v", resume.FilePath, err)
		}
	}
	log.Infof("[ResumeService] 简历已删除, ResumeID: %d, FilePath: %s", id, resume.FilePath)
	return nil
}

// GenerateDownloadURL 生成简历原件的临时下载链接，有效期 1 小时。
func (s *resumeService) GenerateDownloadURL(ctx context.Context, id uint) (*DownloadInfoDTO, error) {
	resume, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.store == nil || !isArchived(resume.FilePath) {
		return nil, ErrResumeNotArchived
	}
	url, err := s.store.PresignedURL(ctx, resume.FilePath, time.Hour)
	if err != nil {
		return nil, err
	}
	return &DownloadInfoDTO{FileName: path.Base(resume.FilePath), DownloadURL: url}, nil
}

func (s *resumeService) find(ctx context.Context, id uint) (*model.Resume, error) {
	resume, err := s.resumeRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return resume, nil
}

func isArchived(filePath string) bool {
	return strings.HasPrefix(filePath, archivedPrefix)
}
