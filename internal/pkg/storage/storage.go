package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrSinkUnavailable 目标存储未配置
var ErrSinkUnavailable = errors.New("storage sink is not configured")

// BlobSink 文档导出目标
type BlobSink interface {
	Name() string
	// Put 写入文件，返回最终位置（本地路径或对象 key）
	Put(ctx context.Context, fileName string, data []byte, contentType string) (string, error)
}

// SanitizeFileName 去掉目录部分，防止写出导出目录
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "document"
	}
	return base
}

// ContentTypeFor 根据扩展名推断导出文件的 Content-Type
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
