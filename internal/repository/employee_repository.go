// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"

	"ai-resume-analyst/internal/model"

	"gorm.io/gorm"
)

// EmployeeRepository 定义了员工数据的读取操作。员工的写入只发生在导入事务中。
type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建一个新的 EmployeeRepository 实例。
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).Order("name ASC").Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}
