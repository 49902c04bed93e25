package service

import (
	"context"
	"testing"
	"time"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook 生成测试用 xlsx，rows 的第一行为表头
func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet error: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name error: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row error: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook error: %v", err)
	}
	return buf.Bytes()
}

func newIngestion(env *testEnv) *IngestionService {
	svc := NewIngestionService(env.docRepo, "Sheet1", env.docBus)
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestIngestCreatesPendingCheques(t *testing.T) {
	env := newTestEnv(t, defaultLifecycle())
	svc := newIngestion(env)
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Cheque No", "Amount", "Client"},
		{1001, 1234567.89, "Acme Ltd"},
		{"1002", "2,500.50", "  Globex  "},
		{"", 10, "Nobody"},
		{1004, "abc", "Bad Amount"},
		{1005, 12.345, "Too Precise"},
		{1006, 5},
	})

	result, err := svc.Ingest(context.Background(), "march.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 4, result.Skipped)

	doc, err := env.documents.Get(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", doc.FileName)
	require.Len(t, doc.Cheques, 2)

	first := doc.Cheques[0]
	assert.Equal(t, "1001", first.ChequeNumber)
	assert.Equal(t, "1234567.89", first.Amount.StringFixed(2))
	assert.Equal(t, "Acme Ltd", first.ClientName)
	assert.Equal(t, "Pending", first.Status)
	assert.Equal(t, "2025-04-01", first.IssueDate)
	assert.Equal(t, 0, first.PrintCount)

	second := doc.Cheques[1]
	assert.Equal(t, "1002", second.ChequeNumber)
	assert.Equal(t, "2500.50", second.Amount.StringFixed(2))
	assert.Equal(t, "Globex", second.ClientName)

	downloaded, err := env.documents.Download(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, data, downloaded.Data)

	require.NotEmpty(t, env.docEvts)
	last := env.docEvts[len(env.docEvts)-1]
	assert.Equal(t, eventbus.DocumentEventIngested, last.Type)
	assert.Equal(t, 2, last.Created)
}

func TestIngestFallsBackToFirstSheet(t *testing.T) {
	env := newTestEnv(t, defaultLifecycle())
	svc := newIngestion(env)
	data := buildWorkbook(t, "Cheques", [][]interface{}{
		{"No", "Amount", "Client"},
		{"A-1", 99.99, "Initech"},
	})

	result, err := svc.Ingest(context.Background(), "other.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
}

func TestIngestHeaderOnlyCreatesEmptyDocument(t *testing.T) {
	env := newTestEnv(t, defaultLifecycle())
	svc := newIngestion(env)
	data := buildWorkbook(t, "Sheet1", [][]interface{}{{"No", "Amount", "Client"}})

	result, err := svc.Ingest(context.Background(), "empty.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.NotZero(t, result.DocumentID)
}

func TestIngestRejectsMalformedInput(t *testing.T) {
	env := newTestEnv(t, defaultLifecycle())
	svc := newIngestion(env)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "bad.xlsx", []byte("not a zip archive"))
	assert.ErrorIs(t, err, domain.ErrMalformedWorkbook)

	_, err = svc.Ingest(ctx, "bad.xlsx", nil)
	assert.ErrorIs(t, err, domain.ErrMalformedWorkbook)

	_, err = svc.Ingest(ctx, "  ", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	docs, err := env.documents.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name   string
		row    []string
		ok     bool
		number string
		amount string
		client string
	}{
		{"plain", []string{"1001", "10.50", "Acme"}, true, "1001", "10.5", "Acme"},
		{"float cheque number", []string{"1001.0", "10", "Acme"}, true, "1001", "10", "Acme"},
		{"alphanumeric number", []string{"CHQ-7", "10", "Acme"}, true, "CHQ-7", "10", "Acme"},
		{"thousand separators", []string{"7", "1,000,000.00", "Acme"}, true, "7", "1000000", "Acme"},
		{"extra columns", []string{"7", "1", "Acme", "ignored"}, true, "7", "1", "Acme"},
		{"zero amount", []string{"7", "0", "Acme"}, true, "7", "0", "Acme"},
		{"short row", []string{"7", "1"}, false, "", "", ""},
		{"missing number", []string{" ", "1", "Acme"}, false, "", "", ""},
		{"missing amount", []string{"7", "", "Acme"}, false, "", "", ""},
		{"negative amount", []string{"7", "-1", "Acme"}, false, "", "", ""},
		{"three decimals", []string{"7", "1.001", "Acme"}, false, "", "", ""},
		{"missing client", []string{"7", "1", ""}, false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := [][]string{{"header"}, tt.row}
			cheques, skipped := ParseRows(rows, "2025-01-01")
			if !tt.ok {
				assert.Empty(t, cheques)
				assert.Equal(t, 1, skipped)
				return
			}
			require.Len(t, cheques, 1)
			assert.Equal(t, 0, skipped)
			assert.Equal(t, tt.number, cheques[0].ChequeNumber)
			assert.Equal(t, tt.amount, cheques[0].Amount.String())
			assert.Equal(t, tt.client, cheques[0].ClientName)
			assert.Equal(t, "Pending", cheques[0].Status)
			assert.Equal(t, "2025-01-01", cheques[0].IssueDate)
			assert.Equal(t, "2025-01-01", cheques[0].DateField)
		})
	}
}

func TestParseRowsSkipsHeaderOnly(t *testing.T) {
	cheques, skipped := ParseRows([][]string{{"1", "2", "3"}}, "2025-01-01")
	assert.Empty(t, cheques)
	assert.Equal(t, 0, skipped)

	cheques, skipped = ParseRows(nil, "2025-01-01")
	assert.Empty(t, cheques)
	assert.Equal(t, 0, skipped)
}
