package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AgentHandler 暴露 Agent 图的结构描述。
type AgentHandler struct {
	describe func() string
}

// NewAgentHandler 创建一个新的 AgentHandler，describe 返回 Mermaid 流程图。
func NewAgentHandler(describe func() string) *AgentHandler {
	return &AgentHandler{describe: describe}
}

// Graph 以 text/plain 返回 Mermaid 流程图。
func (h *AgentHandler) Graph(c *gin.Context) {
	c.String(http.StatusOK, h.describe())
}

// Health 返回服务存活状态。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
