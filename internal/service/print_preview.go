package service

import (
	"context"

	"github.com/chequeflow/backend/internal/pkg/verbalizer"
	"github.com/chequeflow/backend/internal/service/statemachine"
	"github.com/shopspring/decimal"
)

// PreviewItem 单张支票的打印预览
type PreviewItem struct {
	ChequeID           uint            `json:"cheque_id"`
	ChequeNumber       string          `json:"cheque_number"`
	ClientName         string          `json:"client_name"`
	Amount             decimal.Decimal `json:"amount"`
	Status             string          `json:"status"`
	CurrentSignatures  int             `json:"current_signatures"`
	RequiredSignatures int             `json:"required_signatures"`
	Printable          bool            `json:"printable"`
	Reason             string          `json:"reason,omitempty"`
	Text               string          `json:"text,omitempty"`
}

// PrintPreview 打印预览汇总
// MissingSignatures 列出签名数不足的支票，仅在开启签名校验时影响 Printable
type PrintPreview struct {
	Items             []PreviewItem   `json:"items"`
	Printable         []uint          `json:"printable"`
	NotApproved       []uint          `json:"not_approved"`
	MissingSignatures []uint          `json:"missing_signatures"`
	NotFound          []uint          `json:"not_found"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// PrintPreview 汇总一批支票能否打印以及可打印金额合计
func (s *ChequeService) PrintPreview(ctx context.Context, ids []uint) (*PrintPreview, error) {
	cheques, err := s.chequeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "Cheque", 0, "load cheques for preview")
	}

	preview := &PrintPreview{
		Items:             make([]PreviewItem, 0, len(cheques)),
		Printable:         []uint{},
		NotApproved:       []uint{},
		MissingSignatures: []uint{},
		NotFound:          []uint{},
		TotalAmount:       decimal.Zero,
	}

	found := make(map[uint]bool, len(cheques))
	for _, cheque := range cheques {
		found[cheque.ID] = true
		item := PreviewItem{
			ChequeID:           cheque.ID,
			ChequeNumber:       cheque.ChequeNumber,
			ClientName:         cheque.ClientName,
			Amount:             cheque.Amount,
			Status:             cheque.Status,
			CurrentSignatures:  cheque.CurrentSignatures,
			RequiredSignatures: s.RequiredSignatures(cheque.Amount),
		}

		missing := item.CurrentSignatures < item.RequiredSignatures
		if missing {
			preview.MissingSignatures = append(preview.MissingSignatures, cheque.ID)
		}

		switch {
		case !statemachine.IsPrintable(statemachine.ChequeStatus(cheque.Status)):
			item.Reason = "not approved"
			preview.NotApproved = append(preview.NotApproved, cheque.ID)
		case missing && s.cfg.EnforceSignatureQuorum:
			item.Reason = "missing signatures"
		default:
			text, err := verbalizer.VerbalizeDecimal(cheque.Amount, cheque.ClientName)
			if err != nil {
				item.Reason = err.Error()
				break
			}
			item.Printable = true
			item.Text = text
			preview.Printable = append(preview.Printable, cheque.ID)
			preview.TotalAmount = preview.TotalAmount.Add(cheque.Amount)
		}
		preview.Items = append(preview.Items, item)
	}

	for _, id := range ids {
		if !found[id] {
			preview.NotFound = append(preview.NotFound, id)
			found[id] = true
		}
	}
	return preview, nil
}
