// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// ResumeIngestTask 表示一份已上传到 MinIO、等待导入的简历。
type ResumeIngestTask struct {
	ObjectName string `json:"object_name"` // MinIO 对象名，同时作为简历的 file_path
	FileName   string `json:"file_name"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id,omitempty"`
}
