package handler

import (
	"errors"
	"net/http"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/service"
	"github.com/chequeflow/backend/internal/service/querygen"
	"github.com/gin-gonic/gin"
)

type QueryHandler struct {
	queries   *service.QueryService
	assistant *querygen.Assistant
}

// NewQueryHandler assistant 为 nil 时 /query/ask 返回 503
func NewQueryHandler(queries *service.QueryService, assistant *querygen.Assistant) *QueryHandler {
	return &QueryHandler{queries: queries, assistant: assistant}
}

// RegisterRoutes middlewares 作用于整个 /query 分组（限流）
func (h *QueryHandler) RegisterRoutes(router *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	query := router.Group("/query", middlewares...)
	{
		query.POST("", h.Execute)
		query.POST("/ask", h.Ask)
	}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type AskRequest struct {
	Question string `json:"question"`
}

// Execute 执行只读 SQL
func (h *QueryHandler) Execute(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.queries.Execute(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Ask 自然语言问题转 SQL 后执行
func (h *QueryHandler) Ask(c *gin.Context) {
	if !h.assistant.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": querygen.ErrAssistantDisabled.Error()})
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.assistant.Ask(c.Request.Context(), req.Question)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, answer)
	case errors.Is(err, querygen.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, querygen.ErrNoSQL):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		// 领域错误来自查询网关，其余为模型调用失败
		var de *domain.Error
		if errors.As(err, &de) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
