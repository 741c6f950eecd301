// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strings"

	"ai-resume-analyst/internal/agent"
	"ai-resume-analyst/internal/service"
	"ai-resume-analyst/pkg/log"

	"github.com/gin-gonic/gin"
)

// defaultSemanticTopK 是语义检索请求未携带 top_k 时的默认值。
const defaultSemanticTopK = 5

// SearchHandler 结构体定义了搜索相关的处理器。
type SearchHandler struct {
	searchService service.SearchService
	queryAgent    service.QueryAgent
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService, queryAgent service.QueryAgent) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		queryAgent:    queryAgent,
	}
}

// SemanticSearchRequest 定义了语义检索的请求体结构。
type SemanticSearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// AgentQueryRequest 定义了 Agent 问答的请求体结构。
type AgentQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// SemanticSearch 直接执行向量检索，不经过 Agent。
func (h *SearchHandler) SemanticSearch(c *gin.Context) {
	var req SemanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		log.Warnf("[SearchHandler] 语义检索请求失败: query 为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = defaultSemanticTopK
	}
	log.Infof("[SearchHandler] 收到语义检索请求, query: %s, topK: %d", req.Query, topK)

	results, err := h.searchService.Search(c.Request.Context(), req.Query, topK)
	if err != nil {
		log.Errorf("[SearchHandler] 语义检索服务返回错误, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "搜索失败，请稍后重试"})
		return
	}

	log.Infof("[SearchHandler] 语义检索成功, query: '%s', 返回 %d 条结果", req.Query, len(results))
	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"matches": results,
		"count":   len(results),
	})
}

// RagAgent 让查询经过意图路由 Agent，只返回最终答案。
func (h *SearchHandler) RagAgent(c *gin.Context) {
	var req AgentQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}
	log.Infof("[SearchHandler] 收到 Agent 问答请求, query: %s", req.Query)

	state, err := h.queryAgent.Invoke(c.Request.Context(), req.Query)
	if errors.Is(err, agent.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}
	if err != nil {
		log.Errorf("[SearchHandler] Agent 执行失败, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI服务暂时不可用，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": state.Answer})
}
