package repository

import (
	"context"
	"errors"

	"github.com/chequeflow/backend/internal/model"
	"gorm.io/gorm"
)

// 列表和详情都不加载 file_data
var documentMetaColumns = []string{"id", "file_name", "created_at", "is_locked"}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) CreateWithCheques(ctx context.Context, doc *model.Document, cheques []model.Cheque) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Cheques").Create(doc).Error; err != nil {
			return err
		}
		if len(cheques) == 0 {
			return nil
		}
		for i := range cheques {
			cheques[i].DocumentID = doc.ID
		}
		if err := tx.CreateInBatches(&cheques, 100).Error; err != nil {
			return err
		}
		doc.Cheques = cheques
		return nil
	})
}

func (r *documentRepository) Get(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Select(documentMetaColumns).First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetWithData(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetWithCheques(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Select(documentMetaColumns).
		Preload("Cheques", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Select(documentMetaColumns).
		Order("created_at DESC, id DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Rename(ctx context.Context, id uint, name string) error {
	result := r.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Update("file_name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// Lock 幂等，已锁定的文档再次锁定视为成功
func (r *documentRepository) Lock(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Update("is_locked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// Delete 只删除未锁定的文档，锁定时返回 ErrLocked
func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND is_locked = ?", id, false).Delete(&model.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var doc model.Document
			if err := tx.Select("id", "is_locked").First(&doc, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return ErrLocked
		}
		return tx.Where("document_id = ?", id).Delete(&model.Cheque{}).Error
	})
}

func (r *documentRepository) ListIDsByLocked(ctx context.Context, locked bool) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("is_locked = ?", locked).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// ensureExists mysql 在值未变化时 RowsAffected 为 0，需要再确认记录是否存在
func (r *documentRepository) ensureExists(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
