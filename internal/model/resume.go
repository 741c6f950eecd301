package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Resume 对应于数据库中的 resumes 表。
// 同一员工 (EmployeeEmail) 的同一文件路径 (FilePath) 只保留一行，重复导入时原地更新文本。
type Resume struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeEmail string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_resumes_owner_path" json:"employeeEmail"`
	FilePath      string    `gorm:"type:varchar(1024);not null;uniqueIndex:idx_resumes_owner_path" json:"filePath"`
	TextMD        string    `gorm:"column:text_md;type:text;not null" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Employee Employee      `gorm:"foreignKey:EmployeeEmail;references:Email;constraint:OnDelete:CASCADE" json:"employee"`
	Chunks   []ResumeChunk `gorm:"foreignKey:ResumeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Resume) TableName() string {
	return "resumes"
}

// ResumeChunk 对应于数据库中的 resume_chunks 表。
// 向量列不声明维度，维度由导入流程按 embedding.dimensions 校验。
type ResumeChunk struct {
	ID        uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	ResumeID  uint              `gorm:"not null;index" json:"resumeId"`
	ChunkText string            `gorm:"type:text;not null" json:"chunkText"`
	Embedding pgvector.Vector   `gorm:"type:vector" json:"-"`
	MetaData  datatypes.JSONMap `gorm:"column:meta_data;type:jsonb" json:"metaData,omitempty"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ResumeChunk) TableName() string {
	return "resume_chunks"
}
