// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Employee 对应于数据库中的 employees 表。
// Email 是唯一的自然键，也是 resumes 表回连员工的唯一外键。
type Employee struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Role       string    `gorm:"type:varchar(255)" json:"role"`
	EmployeeID *string   `gorm:"column:employeeid;type:varchar(100)" json:"employeeId,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Employee) TableName() string {
	return "employees"
}

// Ref 返回员工的精简身份信息，用于检索结果与摘要。
func (e Employee) Ref() EmployeeRef {
	ref := EmployeeRef{
		ID:    e.ID,
		Name:  e.Name,
		Role:  e.Role,
		Email: e.Email,
	}
	if e.EmployeeID != nil {
		ref.EmployeeID = *e.EmployeeID
	}
	return ref
}
