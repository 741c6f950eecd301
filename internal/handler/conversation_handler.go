package handler

import (
	"net/http"

	"ai-resume-analyst/internal/service"
	"ai-resume-analyst/pkg/log"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与对话相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetConversation 返回某个聊天会话的问答历史。
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	sessionID := c.Param("sessionId")

	history, err := h.service.GetConversationHistory(c.Request.Context(), sessionID)
	if err != nil {
		log.Errorf("[ConversationHandler] 获取会话历史失败, SessionID: %s, Error: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to retrieve conversation history",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    history,
	})
}
