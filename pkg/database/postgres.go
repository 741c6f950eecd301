package database

import (
	"fmt"
	"time"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/pkg/log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitPostgres 初始化 PostgreSQL 连接，启用 pgvector 扩展并迁移表结构。
func InitPostgres(cfg config.PostgresConfig) {
	db, err := OpenPostgres(cfg)
	if err != nil {
		log.Fatal("failed to connect database", err)
	}
	DB = db
	log.Info("PostgreSQL database connected successfully")
}

// OpenPostgres 打开连接并完成迁移，供 server 与 ingest 两个入口共用。
func OpenPostgres(cfg config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接 PostgreSQL 失败: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("启用 pgvector 扩展失败: %w", err)
	}
	// 迁移顺序：employees -> resumes -> resume_chunks（外键依赖）
	if err := db.AutoMigrate(&model.Employee{}, &model.Resume{}, &model.ResumeChunk{}); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}
	return db, nil
}
