package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ai-resume-analyst/internal/service"
	"ai-resume-analyst/pkg/log"

	"github.com/gin-gonic/gin"
)

// ResumeHandler 负责处理所有与简历管理相关的 API 请求。
type ResumeHandler struct {
	resumeService service.ResumeService
}

// NewResumeHandler 创建一个新的 ResumeHandler 实例。
func NewResumeHandler(resumeService service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

// ListResumes 处理获取简历列表的请求。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	resumes, err := h.resumeService.ListResumes(c.Request.Context())
	if err != nil {
		log.Error("ListResumes: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取简历列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "获取简历列表成功",
		"data":    resumes,
	})
}

// ListEmployees 处理获取员工列表的请求。
func (h *ResumeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.resumeService.ListEmployees(c.Request.Context())
	if err != nil {
		log.Error("ListEmployees: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取员工列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "获取员工列表成功",
		"data":    employees,
	})
}

// DeleteResume 处理删除简历的请求。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}

	if err := h.resumeService.DeleteResume(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrResumeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "简历不存在"})
			return
		}
		log.Warnf("DeleteResume: failed for resume %d, err: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除简历失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "简历删除成功",
	})
}

// GenerateDownloadURL 处理生成简历原件下载链接的请求。
func (h *ResumeHandler) GenerateDownloadURL(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}

	downloadInfo, err := h.resumeService.GenerateDownloadURL(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrResumeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "简历不存在"})
		return
	case errors.Is(err, service.ErrResumeNotArchived):
		c.JSON(http.StatusNotFound, gin.H{"error": "该简历没有归档原件"})
		return
	case err != nil:
		log.Warnf("GenerateDownloadURL: failed for resume %d, err: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成下载链接失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "文件下载链接生成成功",
		"data":    downloadInfo,
	})
}

// resumeID 解析路径参数 :id，失败时直接写出 400。
func resumeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的简历 ID"})
		return 0, false
	}
	return uint(id), true
}
