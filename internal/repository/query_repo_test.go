package repository

import (
	"context"
	"testing"

	"github.com/chequeflow/backend/internal/model"
)

func TestQueryRepositoryReadOnlyStringifies(t *testing.T) {
	db := openTestDB(t)
	_, cheques := seedDocument(t, db, "1234567.89", "5.00")
	repo := NewQueryRepository(db)

	result, err := repo.ReadOnly(context.Background(), "SELECT id, amount, remarks, client_name FROM cheques ORDER BY id", 0)
	if err != nil {
		t.Fatalf("ReadOnly error: %v", err)
	}
	if len(result.Columns) != 4 || result.Columns[0] != "id" {
		t.Fatalf("unexpected columns: %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row["remarks"] != nil {
		t.Fatalf("expected NULL to map to nil, got %v", *row["remarks"])
	}
	if row["amount"] == nil || *row["amount"] != "1234567.89" {
		t.Fatalf("unexpected amount: %v", row["amount"])
	}
	if row["client_name"] == nil || *row["client_name"] != cheques[0].ClientName {
		t.Fatalf("unexpected client name: %v", row["client_name"])
	}
}

func TestQueryRepositoryMaxRows(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "1.00", "2.00", "3.00")
	repo := NewQueryRepository(db)

	result, err := repo.ReadOnly(context.Background(), "SELECT id FROM cheques", 2)
	if err != nil {
		t.Fatalf("ReadOnly error: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected rows capped at 2, got %d", len(result.Rows))
	}
}

func TestQueryRepositoryRollsBack(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "1.00")
	repo := NewQueryRepository(db)

	// 仓储本身不做语句检查，写语句执行后也会被回滚
	if _, err := repo.ReadOnly(context.Background(), "UPDATE cheques SET client_name = 'x'", 0); err != nil {
		t.Fatalf("ReadOnly error: %v", err)
	}

	var cheque model.Cheque
	if err := db.First(&cheque).Error; err != nil {
		t.Fatalf("load cheque error: %v", err)
	}
	if cheque.ClientName == "x" {
		t.Fatalf("expected update to be rolled back")
	}
}
