package subscriber

import (
	"context"
	"errors"
	"testing"

	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/pkg/metrics"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockAuditRepo struct {
	repository.AuditRepository
	entries []*model.AuditEntry
	err     error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *model.AuditEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestAuditSubscriberRecordsChequeEvents(t *testing.T) {
	chequeBus := eventbus.NewChequeEventBus()
	docBus := eventbus.NewDocumentEventBus()
	repo := &mockAuditRepo{}
	sub := NewAuditSubscriber(repo)
	sub.Register(chequeBus, docBus)

	signer := uint(9)
	events := []eventbus.ChequeEvent{
		{Type: eventbus.ChequeEventStatusChanged, ChequeID: 1, DocumentID: 2, OldValue: "Pending", NewValue: "Approved", UserID: &signer},
		{Type: eventbus.ChequeEventDeclined, ChequeID: 1, DocumentID: 2, OldValue: "Approved", NewValue: "Declined", Notes: "stale"},
		{Type: eventbus.ChequeEventIssueDateChanged, ChequeID: 1, OldValue: "2024-01-01", NewValue: "2024-02-01"},
		{Type: eventbus.ChequeEventPrinted, ChequeID: 1, DocumentID: 2, NewValue: "1", PrintCount: 1},
	}
	for _, event := range events {
		if err := chequeBus.Publish(context.Background(), event.Type, event); err != nil {
			t.Fatalf("publish error: %v", err)
		}
	}

	if len(repo.entries) != 4 {
		t.Fatalf("expected 4 audit entries, got %d", len(repo.entries))
	}
	wantActions := []string{model.AuditActionStatusChanged, model.AuditActionDeclined, model.AuditActionIssueDateChanged, model.AuditActionPrinted}
	seen := make(map[string]bool)
	for i, entry := range repo.entries {
		if entry.Action != wantActions[i] {
			t.Fatalf("entry %d: expected action %s, got %s", i, wantActions[i], entry.Action)
		}
		if entry.EventID == "" || seen[entry.EventID] {
			t.Fatalf("entry %d: event id %q is empty or duplicated", i, entry.EventID)
		}
		seen[entry.EventID] = true
	}

	first := repo.entries[0]
	if first.ChequeID == nil || *first.ChequeID != 1 || first.UserID == nil || *first.UserID != 9 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if repo.entries[1].Notes != "stale" {
		t.Fatalf("expected decline notes, got %q", repo.entries[1].Notes)
	}
	if repo.entries[2].DocumentID != nil {
		t.Fatalf("expected nil document id for zero value, got %v", *repo.entries[2].DocumentID)
	}
}

func TestAuditSubscriberRecordsDocumentEvents(t *testing.T) {
	docBus := eventbus.NewDocumentEventBus()
	repo := &mockAuditRepo{}
	NewAuditSubscriber(repo).Register(nil, docBus)

	events := []eventbus.DocumentEvent{
		{Type: eventbus.DocumentEventIngested, DocumentID: 3, FileName: "a.xlsx", Created: 5, Skipped: 1},
		{Type: eventbus.DocumentEventRenamed, DocumentID: 3, FileName: "b.xlsx", OldValue: "a.xlsx"},
		{Type: eventbus.DocumentEventLocked, DocumentID: 3},
		{Type: eventbus.DocumentEventDeleted, DocumentID: 3, FileName: "b.xlsx"},
	}
	for _, event := range events {
		if err := docBus.Publish(context.Background(), event.Type, event); err != nil {
			t.Fatalf("publish error: %v", err)
		}
	}

	if len(repo.entries) != 4 {
		t.Fatalf("expected 4 audit entries, got %d", len(repo.entries))
	}
	if repo.entries[0].Notes != "created=5 skipped=1" {
		t.Fatalf("unexpected ingest notes: %q", repo.entries[0].Notes)
	}
	renamed := repo.entries[1]
	if renamed.OldValue != "a.xlsx" || renamed.NewValue != "b.xlsx" || renamed.ChequeID != nil {
		t.Fatalf("unexpected rename entry: %+v", renamed)
	}
	if repo.entries[3].Action != model.AuditActionDocumentDeleted {
		t.Fatalf("unexpected action: %s", repo.entries[3].Action)
	}
}

func TestAuditSubscriberReturnsRepositoryError(t *testing.T) {
	chequeBus := eventbus.NewChequeEventBus()
	repo := &mockAuditRepo{err: errors.New("disk I/O error")}
	NewAuditSubscriber(repo).Register(chequeBus, nil)

	err := chequeBus.Publish(context.Background(), eventbus.ChequeEventPrinted, eventbus.ChequeEvent{Type: eventbus.ChequeEventPrinted, ChequeID: 1})
	if !errors.Is(err, repo.err) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestMetricsSubscriber(t *testing.T) {
	chequeBus := eventbus.NewChequeEventBus()
	docBus := eventbus.NewDocumentEventBus()
	NewMetricsSubscriber().Register(chequeBus, docBus)
	ctx := context.Background()

	approvedBefore := testutil.ToFloat64(metrics.ChequeTransitions.WithLabelValues("Approved"))
	declinedBefore := testutil.ToFloat64(metrics.ChequeTransitions.WithLabelValues("Declined"))
	printsBefore := testutil.ToFloat64(metrics.ChequePrints)
	docsBefore := testutil.ToFloat64(metrics.DocumentsIngested)
	chequesBefore := testutil.ToFloat64(metrics.ChequesIngested)
	skippedBefore := testutil.ToFloat64(metrics.IngestionRowsSkipped)

	_ = chequeBus.Publish(ctx, eventbus.ChequeEventStatusChanged, eventbus.ChequeEvent{NewValue: "Approved"})
	_ = chequeBus.Publish(ctx, eventbus.ChequeEventDeclined, eventbus.ChequeEvent{NewValue: "Declined"})
	_ = chequeBus.Publish(ctx, eventbus.ChequeEventPrinted, eventbus.ChequeEvent{NewValue: "1"})
	_ = docBus.Publish(ctx, eventbus.DocumentEventIngested, eventbus.DocumentEvent{Created: 7, Skipped: 2})

	if got := testutil.ToFloat64(metrics.ChequeTransitions.WithLabelValues("Approved")) - approvedBefore; got != 1 {
		t.Fatalf("approved transitions delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.ChequeTransitions.WithLabelValues("Declined")) - declinedBefore; got != 1 {
		t.Fatalf("declined transitions delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.ChequePrints) - printsBefore; got != 1 {
		t.Fatalf("prints delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.DocumentsIngested) - docsBefore; got != 1 {
		t.Fatalf("documents delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.ChequesIngested) - chequesBefore; got != 7 {
		t.Fatalf("cheques delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.IngestionRowsSkipped) - skippedBefore; got != 2 {
		t.Fatalf("skipped delta = %v", got)
	}
}
