package repository

import (
	"context"
	"errors"

	"github.com/chequeflow/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// ErrLocked 记录已锁定，不允许删除
var ErrLocked = errors.New("record is locked")

type DocumentRepository interface {
	// CreateWithCheques 在同一事务中写入文档及其支票
	CreateWithCheques(ctx context.Context, doc *model.Document, cheques []model.Cheque) error
	// Get 不加载文件内容
	Get(ctx context.Context, id uint) (*model.Document, error)
	GetWithData(ctx context.Context, id uint) (*model.Document, error)
	GetWithCheques(ctx context.Context, id uint) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	Rename(ctx context.Context, id uint, name string) error
	Lock(ctx context.Context, id uint) error
	// Delete 在同一事务中删除未锁定的文档及其支票
	Delete(ctx context.Context, id uint) error
	ListIDsByLocked(ctx context.Context, locked bool) ([]uint, error)
}

type ChequeRepository interface {
	Get(ctx context.Context, id uint) (*model.Cheque, error)
	GetByIDs(ctx context.Context, ids []uint) ([]model.Cheque, error)
	ListByDocument(ctx context.Context, documentID uint) ([]model.Cheque, error)
	// ListWithDocument documentID 为 nil 时返回全部
	ListWithDocument(ctx context.Context, documentID *uint) ([]model.ChequeWithDocument, error)
	// Update 只更新 patch 中显式设置的列
	Update(ctx context.Context, id uint, patch *ChequePatch) error
	// IncrementPrintCount 原子递增并返回新的打印次数
	IncrementPrintCount(ctx context.Context, id uint) (int, error)
	// PrintAndLock 在同一事务中递增打印次数并锁定所属文档，check 返回错误时不做任何写入
	PrintAndLock(ctx context.Context, id uint, check func(cheque *model.Cheque) error) (*model.Cheque, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	ListByCheque(ctx context.Context, chequeID uint) ([]model.AuditEntry, error)
	ListByDocument(ctx context.Context, documentID uint) ([]model.AuditEntry, error)
	ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// QueryResult 只读查询结果，值统一转换为字符串，NULL 为 nil
type QueryResult struct {
	Columns []string             `json:"columns"`
	Rows    []map[string]*string `json:"rows"`
}

type QueryRepository interface {
	// ReadOnly 在一个始终回滚的事务中执行查询，最多返回 maxRows 行
	ReadOnly(ctx context.Context, query string, maxRows int) (*QueryResult, error)
}
