package model

// EmployeeRef 是嵌套在检索结果中的员工身份信息。
type EmployeeRef struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Email      string `json:"email,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// SearchResult 是语义检索返回的一份候选简历。
// Score 为原始距离（越小越相似），不做归一化。
type SearchResult struct {
	ResumeID   uint        `json:"resume_id"`
	Score      float64     `json:"score"`
	Employee   EmployeeRef `json:"employee"`
	FilePath   string      `json:"file_path"`
	ResumeText string      `json:"resume_text"`
}

// ResumeScore 是向量索引按简历聚合后的命中：每份简历取最小距离。
type ResumeScore struct {
	ResumeID uint
	Score    float64
}
