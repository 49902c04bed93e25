package repository

import (
	"context"
	"testing"

	"github.com/chequeflow/backend/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	// 内存库每个连接都是独立的数据库，固定为单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.Document{}, &model.Cheque{}, &model.AuditEntry{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func seedDocument(t *testing.T, db *gorm.DB, amounts ...string) (*model.Document, []model.Cheque) {
	t.Helper()
	doc := &model.Document{FileName: "batch.xlsx", FileData: []byte("payload")}
	cheques := make([]model.Cheque, 0, len(amounts))
	for i, amount := range amounts {
		cheques = append(cheques, model.Cheque{
			ChequeNumber: "CHQ-" + string(rune('A'+i)),
			Amount:       decimal.RequireFromString(amount),
			ClientName:   "Client " + string(rune('A'+i)),
			Status:       "Pending",
			IssueDate:    "2024-01-02",
			DateField:    "2024-01-02",
		})
	}
	if err := NewDocumentRepository(db).CreateWithCheques(context.Background(), doc, cheques); err != nil {
		t.Fatalf("CreateWithCheques error: %v", err)
	}
	return doc, doc.Cheques
}
