package repository

import (
	"context"
	"errors"
	"fmt"

	"ai-resume-analyst/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngestRecord 是一次导入需要原子写入的全部数据。
type IngestRecord struct {
	Employee model.Employee
	FilePath string
	Text     string
	Chunks   []model.ResumeChunk
}

// ResumeRepository 定义了简历及其分块的持久化操作。
type ResumeRepository interface {
	// SaveIngested 在一个事务中完成：员工 upsert、简历按 (email, file_path) upsert、旧分块整体替换。
	SaveIngested(ctx context.Context, rec IngestRecord) (*model.Resume, error)
	FindByID(ctx context.Context, id uint) (*model.Resume, error)
	// FindByIDs 批量读取简历并预加载员工，返回顺序不保证。
	FindByIDs(ctx context.Context, ids []uint) ([]model.Resume, error)
	List(ctx context.Context) ([]model.Resume, error)
	Delete(ctx context.Context, id uint) error
	CountChunks(ctx context.Context, resumeID uint) (int64, error)
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository 创建一个新的 ResumeRepository 实例。
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) SaveIngested(ctx context.Context, rec IngestRecord) (*model.Resume, error) {
	var saved model.Resume
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employee, err := upsertEmployee(tx, rec.Employee)
		if err != nil {
			return err
		}

		resume := model.Resume{
			EmployeeEmail: employee.Email,
			FilePath:      rec.FilePath,
			TextMD:        rec.Text,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_email"}, {Name: "file_path"}},
			DoUpdates: clause.AssignmentColumns([]string{"text_md", "updated_at"}),
		}).Create(&resume).Error; err != nil {
			return fmt.Errorf("upsert resume: %w", err)
		}
		if err := tx.Where("employee_email = ? AND file_path = ?", employee.Email, rec.FilePath).First(&saved).Error; err != nil {
			return fmt.Errorf("reload resume: %w", err)
		}

		// 分块身份在重复导入之间不稳定，整体替换
		if err := tx.Where("resume_id = ?", saved.ID).Delete(&model.ResumeChunk{}).Error; err != nil {
			return fmt.Errorf("delete old chunks: %w", err)
		}
		if len(rec.Chunks) > 0 {
			chunks := make([]model.ResumeChunk, len(rec.Chunks))
			for i, c := range rec.Chunks {
				c.ID = 0
				c.ResumeID = saved.ID
				chunks[i] = c
			}
			if err := tx.CreateInBatches(chunks, 100).Error; err != nil {
				return fmt.Errorf("insert chunks: %w", err)
			}
			saved.Chunks = chunks
		}
		saved.Employee = *employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// upsertEmployee 按邮箱查找员工；不存在则创建，存在则只补齐缺失的字段。
func upsertEmployee(tx *gorm.DB, in model.Employee) (*model.Employee, error) {
	var existing model.Employee
	err := tx.Where("email = ?", in.Email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(&in).Error; err != nil {
			return nil, fmt.Errorf("create employee: %w", err)
		}
		return &in, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}

	updates := map[string]interface{}{}
	if existing.EmployeeID == nil && in.EmployeeID != nil && *in.EmployeeID != "" {
		updates["employeeid"] = *in.EmployeeID
		existing.EmployeeID = in.EmployeeID
	}
	if existing.Role == "" && in.Role != "" {
		updates["role"] = in.Role
		existing.Role = in.Role
	}
	if len(updates) > 0 {
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update employee: %w", err)
		}
	}
	return &existing, nil
}

func (r *resumeRepository) FindByID(ctx context.Context, id uint) (*model.Resume, error) {
	var resume model.Resume
	if err := r.db.WithContext(ctx).Preload("Employee").First(&resume, id).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Resume, error) {
	if len(ids) == 0 {
		return []model.Resume{}, nil
	}
	var resumes []model.Resume
	err := r.db.WithContext(ctx).Preload("Employee").Where("id IN ?", ids).Find(&resumes).Error
	return resumes, err
}

func (r *resumeRepository) List(ctx context.Context) ([]model.Resume, error) {
	var resumes []model.Resume
	err := r.db.WithContext(ctx).Preload("Employee").Order("updated_at DESC").Find(&resumes).Error
	return resumes, err
}

// Delete 删除简历，分块通过外键级联删除。
func (r *resumeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Resume{}, id).Error
}

func (r *resumeRepository) CountChunks(ctx context.Context, resumeID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ResumeChunk{}).Where("resume_id = ?", resumeID).Count(&n).Error
	return n, err
}
