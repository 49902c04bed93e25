package repository

import (
	"context"

	"github.com/chequeflow/backend/internal/model"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计记录仓储
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByCheque 按时间正序返回某张支票的审计记录
func (r *auditRepository) ListByCheque(ctx context.Context, chequeID uint) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("cheque_id = ?", chequeID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (r *auditRepository) ListByDocument(ctx context.Context, documentID uint) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
