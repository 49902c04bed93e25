package service

import (
	"errors"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/repository"
	"k8s.io/klog/v2"
)

// LockedDocumentMessage 删除已锁定文档时返回给调用方的提示
const LockedDocumentMessage = "Cannot delete: Document is locked. Documents are locked after printing to maintain audit trail."

var (
	ErrEmptyQuery        = errors.New("query is empty")
	ErrForbiddenQuery    = errors.New("query is not a read-only statement")
	ErrQueryFailed       = errors.New("query failed")
	ErrUnknownSinkTarget = errors.New("unknown export target")
)

// storeErr 将仓储层错误转换为领域错误，已是领域错误的原样返回
func storeErr(err error, entity string, id uint, op string) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.NotFound(entity, id)
	case errors.Is(err, repository.ErrLocked):
		return domain.Violation(domain.ErrLocked, LockedDocumentMessage)
	}
	klog.Errorf("%s 失败: %s=%d, error=%v", op, entity, id, err)
	return domain.Storage(op, err)
}
