package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

const storageErrorMessage = "internal storage error"

// writeError 按错误分类返回状态码，存储错误只记录日志不暴露细节
func writeError(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.ErrInvariantViolation:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		var de *domain.Error
		if !errors.As(err, &de) {
			klog.Errorf("未分类错误: %s %s, error=%v", c.Request.Method, c.FullPath(), err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": storageErrorMessage})
	}
}

// parseID 解析路径参数 :id
func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return 0, false
	}
	return uint(id), true
}
