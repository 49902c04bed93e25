package handler

import (
	"net/http"
	"strconv"

	"github.com/chequeflow/backend/internal/service"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

type ChequeHandler struct {
	cheques *service.ChequeService
	audit   *service.AuditService
}

func NewChequeHandler(cheques *service.ChequeService, audit *service.AuditService) *ChequeHandler {
	return &ChequeHandler{cheques: cheques, audit: audit}
}

// RegisterRoutes 注册路由
func (h *ChequeHandler) RegisterRoutes(router *gin.RouterGroup) {
	cheques := router.Group("/cheques")
	{
		cheques.GET("", h.List)
		cheques.POST("/print-preview", h.PrintPreview)
		cheques.GET("/:id", h.Get)
		cheques.PUT("/:id/status", h.UpdateStatus)
		cheques.PUT("/:id/decline", h.Decline)
		cheques.PUT("/:id/issue-date", h.UpdateIssueDate)
		cheques.POST("/:id/print-count", h.RecordPrint)
		cheques.POST("/:id/print", h.Print)
		cheques.GET("/:id/audit", h.Audit)
	}
	router.GET("/audit", h.RecentAudit)
}

// UpdateStatusRequest 状态变更请求
type UpdateStatusRequest struct {
	Status   string  `json:"status" binding:"required"`
	Remarks  *string `json:"remarks"`
	SignerID *uint   `json:"signer_id"`
}

type DeclineRequest struct {
	Reason string `json:"reason"`
}

type UpdateIssueDateRequest struct {
	IssueDate string `json:"issue_date"`
}

type PrintPreviewRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// List 支票列表，可按 document_id 过滤
func (h *ChequeHandler) List(c *gin.Context) {
	var documentID *uint
	if raw := c.Query("document_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
			return
		}
		v := uint(id)
		documentID = &v
	}

	cheques, err := h.cheques.ListAll(c.Request.Context(), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cheques)
}

func (h *ChequeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	cheque, err := h.cheques.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cheque)
}

// UpdateStatus 变更支票状态，返回更新后的支票
func (h *ChequeHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("UpdateStatus: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cheques.TransitionStatus(c.Request.Context(), id, req.Status, req.Remarks, req.SignerID); err != nil {
		writeError(c, err)
		return
	}
	h.respondCheque(c, id)
}

func (h *ChequeHandler) Decline(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	var req DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cheques.DeclineWithReason(c.Request.Context(), id, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	h.respondCheque(c, id)
}

func (h *ChequeHandler) UpdateIssueDate(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	var req UpdateIssueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cheques.SetIssueDate(c.Request.Context(), id, req.IssueDate); err != nil {
		writeError(c, err)
		return
	}
	h.respondCheque(c, id)
}

// RecordPrint 只记录打印次数
func (h *ChequeHandler) RecordPrint(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	count, err := h.cheques.RecordPrint(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cheque_id": id, "print_count": count})
}

// Print 打印支票：生成文本、计数并锁定文档
func (h *ChequeHandler) Print(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	result, err := h.cheques.PrintCheque(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ChequeHandler) PrintPreview(c *gin.Context) {
	var req PrintPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preview, err := h.cheques.PrintPreview(c.Request.Context(), req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *ChequeHandler) Audit(c *gin.Context) {
	id, ok := parseID(c, "cheque")
	if !ok {
		return
	}
	entries, err := h.audit.ListByCheque(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// RecentAudit 最近的审计记录，limit 默认 100
func (h *ChequeHandler) RecentAudit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	entries, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *ChequeHandler) respondCheque(c *gin.Context, id uint) {
	cheque, err := h.cheques.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cheque)
}
