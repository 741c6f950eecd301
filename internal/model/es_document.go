package model

// EsChunkDocument 定义了存储在 Elasticsearch 中的简历分块文档结构。
type EsChunkDocument struct {
	VectorID      string    `json:"vector_id"` // 唯一标识，resumeId_chunkIndex
	ResumeID      uint      `json:"resume_id"`
	ChunkIndex    int       `json:"chunk_index"`
	EmployeeEmail string    `json:"employee_email"`
	TextContent   string    `json:"text_content"`
	Vector        []float32 `json:"vector"`
	ModelVersion  string    `json:"model_version"`
}
