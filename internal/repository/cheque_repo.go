package repository

import (
	"context"
	"errors"

	"github.com/chequeflow/backend/internal/model"
	"gorm.io/gorm"
)

type chequeRepository struct {
	db *gorm.DB
}

func NewChequeRepository(db *gorm.DB) ChequeRepository {
	return &chequeRepository{db: db}
}

func (r *chequeRepository) Get(ctx context.Context, id uint) (*model.Cheque, error) {
	var cheque model.Cheque
	err := r.db.WithContext(ctx).First(&cheque, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cheque, nil
}

func (r *chequeRepository) GetByIDs(ctx context.Context, ids []uint) ([]model.Cheque, error) {
	var cheques []model.Cheque
	if len(ids) == 0 {
		return cheques, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&cheques).Error
	return cheques, err
}

func (r *chequeRepository) ListByDocument(ctx context.Context, documentID uint) ([]model.Cheque, error) {
	var cheques []model.Cheque
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Order("id").Find(&cheques).Error
	return cheques, err
}

func (r *chequeRepository) ListWithDocument(ctx context.Context, documentID *uint) ([]model.ChequeWithDocument, error) {
	var rows []model.ChequeWithDocument
	query := r.db.WithContext(ctx).
		Table("cheques").
		Select("cheques.*, documents.file_name AS file_name").
		Joins("LEFT JOIN documents ON documents.id = cheques.document_id")
	if documentID != nil {
		query = query.Where("cheques.document_id = ?", *documentID)
	}
	err := query.Order("cheques.id").Scan(&rows).Error
	return rows, err
}

func (r *chequeRepository) Update(ctx context.Context, id uint, patch *ChequePatch) error {
	if patch == nil || patch.IsEmpty() {
		return r.ensureExists(r.db.WithContext(ctx), id)
	}
	result := r.db.WithContext(ctx).Model(&model.Cheque{}).Where("id = ?", id).Updates(patch.Fields())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.ensureExists(r.db.WithContext(ctx), id)
	}
	return nil
}

func (r *chequeRepository) IncrementPrintCount(ctx context.Context, id uint) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		count, err = incrementPrintCount(tx, id)
		return err
	})
	return count, err
}

func (r *chequeRepository) PrintAndLock(ctx context.Context, id uint, check func(cheque *model.Cheque) error) (*model.Cheque, error) {
	var cheque model.Cheque
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cheque, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if check != nil {
			if err := check(&cheque); err != nil {
				return err
			}
		}

		count, err := incrementPrintCount(tx, id)
		if err != nil {
			return err
		}
		cheque.PrintCount = count

		result := tx.Model(&model.Document{}).Where("id = ?", cheque.DocumentID).Update("is_locked", true)
		if result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cheque, nil
}

// incrementPrintCount 使用 COALESCE 兼容历史数据中为空的计数
func incrementPrintCount(tx *gorm.DB, id uint) (int, error) {
	result := tx.Model(&model.Cheque{}).
		Where("id = ?", id).
		Update("print_count", gorm.Expr("COALESCE(print_count, 0) + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var count int
	if err := tx.Model(&model.Cheque{}).Where("id = ?", id).Select("print_count").Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chequeRepository) ensureExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&model.Cheque{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
