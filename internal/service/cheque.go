package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chequeflow/backend/config"
	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/pkg/verbalizer"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/chequeflow/backend/internal/service/statemachine"
	"github.com/shopspring/decimal"
	"k8s.io/klog/v2"
)

const issueDateLayout = "2006-01-02"

// ChequeService 支票生命周期：状态迁移、签名、打印计数
type ChequeService struct {
	cfg           config.LifecycleConfig
	chequeRepo    repository.ChequeRepository
	sm            *statemachine.ChequeStateMachine
	chequeBus     *eventbus.ChequeEventBus
	docBus        *eventbus.DocumentEventBus
	dualThreshold decimal.Decimal
}

func NewChequeService(cfg config.LifecycleConfig, chequeRepo repository.ChequeRepository, chequeBus *eventbus.ChequeEventBus, docBus *eventbus.DocumentEventBus) *ChequeService {
	threshold, err := decimal.NewFromString(cfg.DualSignatureThreshold)
	if err != nil {
		klog.Warningf("dual_signature_threshold 无效，使用 1500: value=%q", cfg.DualSignatureThreshold)
		threshold = decimal.NewFromInt(1500)
	}
	return &ChequeService{
		cfg:           cfg,
		chequeRepo:    chequeRepo,
		sm:            statemachine.NewChequeStateMachine(),
		chequeBus:     chequeBus,
		docBus:        docBus,
		dualThreshold: threshold,
	}
}

// PrintResult 打印结果
type PrintResult struct {
	ChequeID   uint   `json:"cheque_id"`
	DocumentID uint   `json:"document_id"`
	PrintCount int    `json:"print_count"`
	Text       string `json:"text"`
}

func (s *ChequeService) Get(ctx context.Context, id uint) (*model.Cheque, error) {
	cheque, err := s.chequeRepo.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Cheque", id, "get cheque")
	}
	return cheque, nil
}

func (s *ChequeService) ListByDocument(ctx context.Context, documentID uint) ([]model.Cheque, error) {
	cheques, err := s.chequeRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, storeErr(err, "Document", documentID, "list cheques")
	}
	return cheques, nil
}

// ListAll 返回支票及所属文档文件名，documentID 为 nil 时返回全部
func (s *ChequeService) ListAll(ctx context.Context, documentID *uint) ([]model.ChequeWithDocument, error) {
	rows, err := s.chequeRepo.ListWithDocument(ctx, documentID)
	if err != nil {
		return nil, storeErr(err, "Document", 0, "list cheques")
	}
	return rows, nil
}

// TransitionStatus 迁移支票状态
// 迁移到 Approved 时记录第一签名人；迁移到 Declined 且带 remarks 时 remarks 同时作为拒绝原因；
// remarks 与状态无关，缺省或空白时不会覆盖已有备注
func (s *ChequeService) TransitionStatus(ctx context.Context, id uint, status string, remarks *string, signerID *uint) error {
	to, err := statemachine.ParseStatus(status)
	if err != nil {
		return domain.Invalid(domain.ErrInvalidStatus, err.Error())
	}

	cheque, err := s.chequeRepo.Get(ctx, id)
	if err != nil {
		return storeErr(err, "Cheque", id, "get cheque")
	}

	note := nonBlankOrNil(remarks)

	signer := s.cfg.SignerUserID
	if signerID != nil {
		signer = *signerID
	}
	if to == statemachine.ChequeStatusApproved && signer == 0 {
		return domain.Invalid(domain.ErrInvalidInput, "Signer user ID is required to approve a cheque")
	}

	from := statemachine.ChequeStatus(cheque.Status)
	if err := s.sm.Transition(from, to, id); err != nil {
		return domain.Invalid(domain.ErrInvalidStatus, err.Error())
	}

	patch := repository.NewChequePatch().Status(string(to))
	switch to {
	case statemachine.ChequeStatusApproved:
		patch.FirstSignature(signer)
	case statemachine.ChequeStatusDeclined:
		if note != nil {
			patch.DeclineReason(*note)
		}
	}
	if note != nil && !patch.Has("remarks") {
		patch.Remarks(*note)
	}
	s.applyLeavingEffects(patch, from, to)

	if err := s.chequeRepo.Update(ctx, id, patch); err != nil {
		return storeErr(err, "Cheque", id, "update cheque status")
	}

	event := eventbus.ChequeEvent{
		Type:       eventbus.ChequeEventStatusChanged,
		ChequeID:   id,
		DocumentID: cheque.DocumentID,
		OldValue:   cheque.Status,
		NewValue:   string(to),
		Amount:     cheque.Amount,
	}
	if to == statemachine.ChequeStatusApproved {
		event.UserID = &signer
	}
	if note != nil {
		event.Notes = *note
	}
	if to == statemachine.ChequeStatusDeclined {
		event.Type = eventbus.ChequeEventDeclined
	}
	s.publishCheque(ctx, event)
	return nil
}

// DeclineWithReason 拒绝支票，原因同时写入 decline_reason 与 remarks
func (s *ChequeService) DeclineWithReason(ctx context.Context, id uint, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Invalid(domain.ErrEmptyReason, "Decline reason cannot be empty")
	}

	cheque, err := s.chequeRepo.Get(ctx, id)
	if err != nil {
		return storeErr(err, "Cheque", id, "get cheque")
	}

	from := statemachine.ChequeStatus(cheque.Status)
	to := statemachine.ChequeStatusDeclined
	if err := s.sm.Transition(from, to, id); err != nil {
		return domain.Invalid(domain.ErrInvalidStatus, err.Error())
	}

	patch := repository.NewChequePatch().
		Status(string(to)).
		DeclineReason(reason).
		Remarks(reason)
	s.applyLeavingEffects(patch, from, to)

	if err := s.chequeRepo.Update(ctx, id, patch); err != nil {
		return storeErr(err, "Cheque", id, "decline cheque")
	}

	s.publishCheque(ctx, eventbus.ChequeEvent{
		Type:       eventbus.ChequeEventDeclined,
		ChequeID:   id,
		DocumentID: cheque.DocumentID,
		OldValue:   cheque.Status,
		NewValue:   string(to),
		Notes:      reason,
		Amount:     cheque.Amount,
	})
	return nil
}

// SetIssueDate 覆盖签发日期，格式 YYYY-MM-DD
func (s *ChequeService) SetIssueDate(ctx context.Context, id uint, date string) error {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(issueDateLayout, date); err != nil {
		return domain.Invalid(domain.ErrInvalidDate, fmt.Sprintf("Invalid issue date %q: expected YYYY-MM-DD", date))
	}

	cheque, err := s.chequeRepo.Get(ctx, id)
	if err != nil {
		return storeErr(err, "Cheque", id, "get cheque")
	}

	if err := s.chequeRepo.Update(ctx, id, repository.NewChequePatch().IssueDate(date)); err != nil {
		return storeErr(err, "Cheque", id, "update issue date")
	}

	s.publishCheque(ctx, eventbus.ChequeEvent{
		Type:       eventbus.ChequeEventIssueDateChanged,
		ChequeID:   id,
		DocumentID: cheque.DocumentID,
		OldValue:   cheque.IssueDate,
		NewValue:   date,
	})
	return nil
}

// RecordPrint 只递增打印次数，不锁定文档
func (s *ChequeService) RecordPrint(ctx context.Context, id uint) (int, error) {
	count, err := s.chequeRepo.IncrementPrintCount(ctx, id)
	if err != nil {
		return 0, storeErr(err, "Cheque", id, "record print")
	}
	klog.V(6).Infof("记录打印: chequeID=%d, printCount=%d", id, count)

	event := eventbus.ChequeEvent{
		Type:       eventbus.ChequeEventPrinted,
		ChequeID:   id,
		NewValue:   fmt.Sprintf("%d", count),
		PrintCount: count,
	}
	if cheque, err := s.chequeRepo.Get(ctx, id); err == nil {
		event.DocumentID = cheque.DocumentID
		event.Amount = cheque.Amount
	}
	s.publishCheque(ctx, event)
	return count, nil
}

// PrintCheque 生成打印文本、递增打印次数并锁定文档，三者在同一事务中完成
func (s *ChequeService) PrintCheque(ctx context.Context, id uint) (*PrintResult, error) {
	var text string
	cheque, err := s.chequeRepo.PrintAndLock(ctx, id, func(cheque *model.Cheque) error {
		if !statemachine.IsPrintable(statemachine.ChequeStatus(cheque.Status)) {
			return domain.Violation(domain.ErrNotApproved,
				fmt.Sprintf("Cheque with ID %d is %s; only Approved cheques can be printed", cheque.ID, cheque.Status))
		}
		if s.cfg.EnforceSignatureQuorum {
			required := s.RequiredSignatures(cheque.Amount)
			if cheque.CurrentSignatures < required {
				return domain.Violation(domain.ErrInsufficientSignatures,
					fmt.Sprintf("Cheque with ID %d has %d of %d required signatures", cheque.ID, cheque.CurrentSignatures, required))
			}
		}
		rendered, err := verbalizer.VerbalizeDecimal(cheque.Amount, cheque.ClientName)
		if err != nil {
			return domain.InvalidWrap(domain.ErrInvalidAmount, err)
		}
		text = rendered
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Cheque", id, "print cheque")
	}

	klog.V(6).Infof("支票已打印并锁定文档: chequeID=%d, documentID=%d, printCount=%d", cheque.ID, cheque.DocumentID, cheque.PrintCount)

	s.publishCheque(ctx, eventbus.ChequeEvent{
		Type:       eventbus.ChequeEventPrinted,
		ChequeID:   cheque.ID,
		DocumentID: cheque.DocumentID,
		NewValue:   fmt.Sprintf("%d", cheque.PrintCount),
		Amount:     cheque.Amount,
		PrintCount: cheque.PrintCount,
	})
	s.publishDocument(ctx, eventbus.DocumentEvent{
		Type:       eventbus.DocumentEventLocked,
		DocumentID: cheque.DocumentID,
	})

	return &PrintResult{
		ChequeID:   cheque.ID,
		DocumentID: cheque.DocumentID,
		PrintCount: cheque.PrintCount,
		Text:       text,
	}, nil
}

// Verbalize 金额转大写，校验失败归类为非法输入
func (s *ChequeService) Verbalize(amount float64, payee string) (string, error) {
	text, err := verbalizer.Verbalize(amount, payee)
	if err != nil {
		return "", domain.InvalidWrap(domain.ErrInvalidAmount, err)
	}
	return text, nil
}

// RequiredSignatures 金额超过阈值需要双签
func (s *ChequeService) RequiredSignatures(amount decimal.Decimal) int {
	if amount.GreaterThan(s.dualThreshold) {
		return 2
	}
	return 1
}

// applyLeavingEffects 离开 Approved 清空签名（可配置保留），离开 Declined 清空拒绝原因
func (s *ChequeService) applyLeavingEffects(patch *repository.ChequePatch, from, to statemachine.ChequeStatus) {
	if statemachine.LeavesApproved(from, to) && !s.cfg.RetainSignatureHistory {
		patch.ClearSignatures()
	}
	if statemachine.LeavesDeclined(from, to) {
		patch.ClearDeclineReason()
	}
}

func (s *ChequeService) publishCheque(ctx context.Context, event eventbus.ChequeEvent) {
	if s.chequeBus == nil {
		return
	}
	if err := s.chequeBus.Publish(ctx, event.Type, event); err != nil {
		klog.Warningf("发布支票事件失败: type=%s, chequeID=%d, error=%v", event.Type, event.ChequeID, err)
	}
}

func (s *ChequeService) publishDocument(ctx context.Context, event eventbus.DocumentEvent) {
	if s.docBus == nil {
		return
	}
	if err := s.docBus.Publish(ctx, event.Type, event); err != nil {
		klog.Warningf("发布文档事件失败: type=%s, documentID=%d, error=%v", event.Type, event.DocumentID, err)
	}
}

// nonBlankOrNil 空白视为缺省，非空白原样返回
func nonBlankOrNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
