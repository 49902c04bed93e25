package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/chequeflow/backend/internal/service/statemachine"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"k8s.io/klog/v2"
)

// IngestionService 从表格导入支票
type IngestionService struct {
	docRepo repository.DocumentRepository
	sheet   string
	bus     *eventbus.DocumentEventBus
	now     func() time.Time
}

func NewIngestionService(docRepo repository.DocumentRepository, sheet string, bus *eventbus.DocumentEventBus) *IngestionService {
	return &IngestionService{
		docRepo: docRepo,
		sheet:   sheet,
		bus:     bus,
		now:     time.Now,
	}
}

// IngestResult 导入结果
type IngestResult struct {
	DocumentID uint `json:"document_id"`
	Created    int  `json:"created"`
	Skipped    int  `json:"skipped"`
}

// Ingest 保存原始文件并为每个有效数据行创建一张 Pending 支票
// 第一行为表头；列顺序为 支票号、金额、收款人，无法解析的行直接跳过
func (s *IngestionService) Ingest(ctx context.Context, fileName string, data []byte) (*IngestResult, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, domain.Invalid(domain.ErrEmptyName, "File name cannot be empty")
	}
	if len(data) == 0 {
		return nil, domain.Invalid(domain.ErrMalformedWorkbook, "Uploaded file is empty")
	}

	rows, err := s.readRows(data)
	if err != nil {
		return nil, domain.Invalid(domain.ErrMalformedWorkbook, fmt.Sprintf("Unable to read spreadsheet %s: %v", fileName, err))
	}

	cheques, skipped := ParseRows(rows, s.now().Format(issueDateLayout))

	doc := &model.Document{FileName: fileName, FileData: data}
	if err := s.docRepo.CreateWithCheques(ctx, doc, cheques); err != nil {
		return nil, storeErr(err, "Document", 0, "ingest document")
	}

	result := &IngestResult{DocumentID: doc.ID, Created: len(cheques), Skipped: skipped}
	klog.V(6).Infof("导入完成: documentID=%d, fileName=%s, created=%d, skipped=%d", doc.ID, fileName, result.Created, result.Skipped)

	if s.bus != nil {
		event := eventbus.DocumentEvent{
			Type:       eventbus.DocumentEventIngested,
			DocumentID: doc.ID,
			FileName:   fileName,
			Created:    result.Created,
			Skipped:    result.Skipped,
		}
		if err := s.bus.Publish(ctx, event.Type, event); err != nil {
			klog.Warningf("发布导入事件失败: documentID=%d, error=%v", doc.ID, err)
		}
	}
	return result, nil
}

// readRows 优先读取配置的工作表，不存在时读取第一个工作表
func (s *IngestionService) readRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := s.sheet
	if index, err := f.GetSheetIndex(sheet); sheet == "" || err != nil || index < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

// ParseRows 将表格行转换为待保存的支票，返回跳过的行数（不含表头）
func ParseRows(rows [][]string, today string) ([]model.Cheque, int) {
	cheques := make([]model.Cheque, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cheque, reason := parseRow(row)
		if reason != "" {
			skipped++
			klog.Warningf("跳过第 %d 行: %s", i+1, reason)
			continue
		}
		cheque.IssueDate = today
		cheque.DateField = today
		cheques = append(cheques, cheque)
	}
	return cheques, skipped
}

func parseRow(row []string) (model.Cheque, string) {
	if len(row) < 3 {
		return model.Cheque{}, "fewer than 3 columns"
	}

	number := normalizeChequeNumber(row[0])
	if number == "" {
		return model.Cheque{}, "missing cheque number"
	}

	amount, err := parseAmount(row[1])
	if err != nil {
		return model.Cheque{}, err.Error()
	}

	client := strings.TrimSpace(row[2])
	if client == "" {
		return model.Cheque{}, "missing client name"
	}

	return model.Cheque{
		ChequeNumber: number,
		Amount:       amount,
		ClientName:   client,
		Status:       string(statemachine.ChequeStatusPending),
	}, ""
}

// normalizeChequeNumber 数字单元格可能带 ".0"，整数值去掉小数部分
func normalizeChequeNumber(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && f == float64(int64(f)) && strings.ContainsAny(value, ".eE") {
		return strconv.FormatInt(int64(f), 10)
	}
	return value
}

func parseAmount(raw string) (decimal.Decimal, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return decimal.Decimal{}, fmt.Errorf("missing amount")
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %q is not a number", raw)
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount %q is negative", raw)
	}
	if !amount.Round(2).Equal(amount) {
		return decimal.Decimal{}, fmt.Errorf("amount %q has more than two decimal places", raw)
	}
	return amount, nil
}
