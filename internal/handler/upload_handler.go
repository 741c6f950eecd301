package handler

import (
	"errors"
	"net/http"

	"ai-resume-analyst/internal/pipeline"
	"ai-resume-analyst/internal/service"
	"ai-resume-analyst/pkg/log"

	"github.com/gin-gonic/gin"
)

// UploadHandler 负责处理简历上传的 API 请求。
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadResume 接收 multipart 表单（file, email, name, role, employee_id），
// 归档原件并投递导入任务。
func (h *UploadHandler) UploadResume(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未能获取上传的文件"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未能读取上传的文件"})
		return
	}
	defer file.Close()

	result, err := h.uploadService.UploadResume(c.Request.Context(), service.UploadRequest{
		FileName:   fileHeader.Filename,
		Size:       fileHeader.Size,
		Reader:     file,
		Email:      c.PostForm("email"),
		Name:       c.PostForm("name"),
		Role:       c.PostForm("role"),
		EmployeeID: c.PostForm("employee_id"),
	})
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少有效的员工邮箱"})
		return
	case errors.Is(err, pipeline.ErrUnsupportedFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的文件类型，仅支持 PDF、DOCX 和 Markdown"})
		return
	case err != nil:
		log.Error("UploadResume: failed to upload resume", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "简历上传失败"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    http.StatusAccepted,
		"message": "简历上传成功，导入任务已发送到 Kafka",
		"data":    result,
	})
}
