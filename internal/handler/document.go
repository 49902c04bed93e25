package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/chequeflow/backend/internal/service"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

type DocumentHandler struct {
	documents *service.DocumentService
	ingestion *service.IngestionService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(documents *service.DocumentService, ingestion *service.IngestionService) *DocumentHandler {
	return &DocumentHandler{documents: documents, ingestion: ingestion}
}

// RegisterRoutes 注册路由
func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/documents")
	{
		docs.POST("/upload", h.Upload)
		docs.GET("", h.List)
		docs.DELETE("", h.DeleteAll)
		docs.GET("/:id", h.Get)
		docs.GET("/:id/download", h.Download)
		docs.POST("/:id/export", h.Export)
		docs.PUT("/:id/name", h.Rename)
		docs.POST("/:id/lock", h.Lock)
		docs.GET("/:id/locked", h.IsLocked)
		docs.DELETE("/:id", h.Delete)
	}
}

type RenameRequest struct {
	Name string `json:"name"`
}

type ExportRequest struct {
	Target string `json:"target"`
}

// Upload 上传表格并导入支票
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		klog.Errorf("读取上传文件失败: fileName=%s, error=%v", fileHeader.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}

	result, err := h.ingestion.Ingest(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Get 文档详情及其支票
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Download 以附件形式返回原始文件
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	doc, err := h.documents.Download(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func (h *DocumentHandler) Export(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	var req ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	result, err := h.documents.Export(c.Request.Context(), id, req.Target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DocumentHandler) Rename(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.documents.RenameDocument(c.Request.Context(), id, req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document renamed"})
}

func (h *DocumentHandler) Lock(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	if err := h.documents.LockDocument(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document locked"})
}

func (h *DocumentHandler) IsLocked(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	locked, err := h.documents.IsLocked(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document_id": id, "is_locked": locked})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}
	if err := h.documents.DeleteDocument(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// DeleteAll 删除全部未锁定文档
func (h *DocumentHandler) DeleteAll(c *gin.Context) {
	result, err := h.documents.DeleteAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
