package subscriber

import (
	"context"
	"fmt"

	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// AuditSubscriber 把支票和文档事件写入审计表
type AuditSubscriber struct {
	auditRepo repository.AuditRepository
	newID     func() string
}

func NewAuditSubscriber(auditRepo repository.AuditRepository) *AuditSubscriber {
	return &AuditSubscriber{
		auditRepo: auditRepo,
		newID:     func() string { return uuid.New().String() },
	}
}

func (s *AuditSubscriber) Register(chequeBus *eventbus.ChequeEventBus, docBus *eventbus.DocumentEventBus) {
	if chequeBus != nil {
		chequeBus.Subscribe(eventbus.ChequeEventStatusChanged, s.handleChequeEvent)
		chequeBus.Subscribe(eventbus.ChequeEventDeclined, s.handleChequeEvent)
		chequeBus.Subscribe(eventbus.ChequeEventIssueDateChanged, s.handleChequeEvent)
		chequeBus.Subscribe(eventbus.ChequeEventPrinted, s.handleChequeEvent)
	}
	if docBus != nil {
		docBus.Subscribe(eventbus.DocumentEventIngested, s.handleDocumentEvent)
		docBus.Subscribe(eventbus.DocumentEventLocked, s.handleDocumentEvent)
		docBus.Subscribe(eventbus.DocumentEventRenamed, s.handleDocumentEvent)
		docBus.Subscribe(eventbus.DocumentEventDeleted, s.handleDocumentEvent)
	}
}

var chequeActions = map[eventbus.ChequeEventType]string{
	eventbus.ChequeEventStatusChanged:    model.AuditActionStatusChanged,
	eventbus.ChequeEventDeclined:         model.AuditActionDeclined,
	eventbus.ChequeEventIssueDateChanged: model.AuditActionIssueDateChanged,
	eventbus.ChequeEventPrinted:          model.AuditActionPrinted,
}

var documentActions = map[eventbus.DocumentEventType]string{
	eventbus.DocumentEventIngested: model.AuditActionIngested,
	eventbus.DocumentEventLocked:   model.AuditActionDocumentLocked,
	eventbus.DocumentEventRenamed:  model.AuditActionDocumentRenamed,
	eventbus.DocumentEventDeleted:  model.AuditActionDocumentDeleted,
}

func (s *AuditSubscriber) handleChequeEvent(ctx context.Context, event eventbus.ChequeEvent) error {
	action, ok := chequeActions[event.Type]
	if !ok {
		return fmt.Errorf("unknown cheque event type: %s", event.Type)
	}
	entry := &model.AuditEntry{
		EventID:    s.newID(),
		ChequeID:   optionalID(event.ChequeID),
		DocumentID: optionalID(event.DocumentID),
		Action:     action,
		OldValue:   event.OldValue,
		NewValue:   event.NewValue,
		UserID:     event.UserID,
		Notes:      event.Notes,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		klog.Errorf("写入审计记录失败: action=%s, chequeID=%d, error=%v", action, event.ChequeID, err)
		return err
	}
	klog.V(6).Infof("审计记录已写入: action=%s, chequeID=%d, %s -> %s", action, event.ChequeID, event.OldValue, event.NewValue)
	return nil
}

func (s *AuditSubscriber) handleDocumentEvent(ctx context.Context, event eventbus.DocumentEvent) error {
	action, ok := documentActions[event.Type]
	if !ok {
		return fmt.Errorf("unknown document event type: %s", event.Type)
	}
	entry := &model.AuditEntry{
		EventID:    s.newID(),
		DocumentID: optionalID(event.DocumentID),
		Action:     action,
		OldValue:   event.OldValue,
		NewValue:   event.FileName,
	}
	if event.Type == eventbus.DocumentEventIngested {
		entry.Notes = fmt.Sprintf("created=%d skipped=%d", event.Created, event.Skipped)
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		klog.Errorf("写入审计记录失败: action=%s, documentID=%d, error=%v", action, event.DocumentID, err)
		return err
	}
	klog.V(6).Infof("审计记录已写入: action=%s, documentID=%d", action, event.DocumentID)
	return nil
}

// optionalID 零值 ID 记为 NULL
func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
