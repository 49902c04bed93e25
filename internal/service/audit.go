package service

import (
	"context"

	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/repository"
)

// AuditService 审计记录查询，写入由事件订阅者完成
type AuditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

func (s *AuditService) ListByCheque(ctx context.Context, chequeID uint) ([]model.AuditEntry, error) {
	entries, err := s.auditRepo.ListByCheque(ctx, chequeID)
	if err != nil {
		return nil, storeErr(err, "Cheque", chequeID, "list audit entries")
	}
	return entries, nil
}

func (s *AuditService) ListByDocument(ctx context.Context, documentID uint) ([]model.AuditEntry, error) {
	entries, err := s.auditRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, storeErr(err, "Document", documentID, "list audit entries")
	}
	return entries, nil
}

func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, storeErr(err, "Audit", 0, "list audit entries")
	}
	return entries, nil
}
