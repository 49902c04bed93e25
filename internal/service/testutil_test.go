package service

import (
	"context"
	"testing"

	"github.com/chequeflow/backend/config"
	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/pkg/database"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	docRepo    repository.DocumentRepository
	chequeRepo repository.ChequeRepository
	chequeBus  *eventbus.ChequeEventBus
	docBus     *eventbus.DocumentEventBus
	cheques    *ChequeService
	documents  *DocumentService
	chequeEvts []eventbus.ChequeEvent
	docEvts    []eventbus.DocumentEvent
}

func newTestEnv(t *testing.T, lifecycle config.LifecycleConfig) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate error: %v", err)
	}

	env := &testEnv{
		db:         db,
		docRepo:    repository.NewDocumentRepository(db),
		chequeRepo: repository.NewChequeRepository(db),
		chequeBus:  eventbus.NewChequeEventBus(),
		docBus:     eventbus.NewDocumentEventBus(),
	}
	for _, typ := range []eventbus.ChequeEventType{
		eventbus.ChequeEventStatusChanged, eventbus.ChequeEventDeclined,
		eventbus.ChequeEventIssueDateChanged, eventbus.ChequeEventPrinted,
	} {
		env.chequeBus.Subscribe(typ, func(ctx context.Context, event eventbus.ChequeEvent) error {
			env.chequeEvts = append(env.chequeEvts, event)
			return nil
		})
	}
	for _, typ := range []eventbus.DocumentEventType{
		eventbus.DocumentEventIngested, eventbus.DocumentEventLocked,
		eventbus.DocumentEventRenamed, eventbus.DocumentEventDeleted,
	} {
		env.docBus.Subscribe(typ, func(ctx context.Context, event eventbus.DocumentEvent) error {
			env.docEvts = append(env.docEvts, event)
			return nil
		})
	}
	env.cheques = NewChequeService(lifecycle, env.chequeRepo, env.chequeBus, env.docBus)
	env.documents = NewDocumentService(env.docRepo, env.docBus)
	return env
}

func defaultLifecycle() config.LifecycleConfig {
	return config.Default().Lifecycle
}

// seed 创建一个文档及若干 Pending 支票
func (e *testEnv) seed(t *testing.T, amounts ...string) (*model.Document, []model.Cheque) {
	t.Helper()
	doc := &model.Document{FileName: "batch.xlsx", FileData: []byte("raw")}
	cheques := make([]model.Cheque, 0, len(amounts))
	for i, amount := range amounts {
		cheques = append(cheques, model.Cheque{
			ChequeNumber: string(rune('1' + i)),
			Amount:       decimal.RequireFromString(amount),
			ClientName:   "Jane Doe",
			Status:       "Pending",
			IssueDate:    "2024-01-02",
			DateField:    "2024-01-02",
		})
	}
	if err := e.docRepo.CreateWithCheques(context.Background(), doc, cheques); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	return doc, doc.Cheques
}

func (e *testEnv) reload(t *testing.T, id uint) *model.Cheque {
	t.Helper()
	cheque, err := e.chequeRepo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("reload cheque %d error: %v", id, err)
	}
	return cheque
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
