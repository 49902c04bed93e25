package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document 导入的原始表格文件，打印后被锁定
type Document struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FileName  string    `json:"file_name" gorm:"size:255;not null"`
	FileData  []byte    `json:"-" gorm:"column:file_data"`
	CreatedAt time.Time `json:"created_at"`
	IsLocked  bool      `json:"is_locked" gorm:"not null;default:false"`
	Cheques   []Cheque  `json:"cheques,omitempty" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

type Cheque struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	DocumentID            uint            `json:"document_id" gorm:"index;not null"`
	ChequeNumber          string          `json:"cheque_number" gorm:"size:64"`
	Amount                decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	ClientName            string          `json:"client_name" gorm:"size:255"`
	Status                string          `json:"status" gorm:"size:20;index;default:Pending"` // Pending, Approved, Declined
	IssueDate             string          `json:"issue_date" gorm:"size:10"`
	DateField             string          `json:"date_field" gorm:"column:date_field;size:10"`
	Remarks               *string         `json:"remarks" gorm:"type:text"`
	DeclineReason         *string         `json:"decline_reason" gorm:"type:text"`
	CurrentSignatures     int             `json:"current_signatures" gorm:"not null;default:0"`
	FirstSignatureUserID  *uint           `json:"first_signature_user_id"`
	SecondSignatureUserID *uint           `json:"second_signature_user_id"`
	PrintCount            int             `json:"print_count" gorm:"not null;default:0"`
	CreatedAt             time.Time       `json:"created_at"`
}

// ChequeWithDocument 列表查询结果，附带所属文档的文件名
type ChequeWithDocument struct {
	Cheque
	FileName string `json:"file_name"`
}

// AuditEntry 审计记录，不建外键，文档删除后历史仍然保留
type AuditEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EventID    string    `json:"event_id" gorm:"size:36;uniqueIndex"`
	ChequeID   *uint     `json:"cheque_id" gorm:"index"`
	DocumentID *uint     `json:"document_id" gorm:"index"`
	Action     string    `json:"action" gorm:"size:50;not null"`
	OldValue   string    `json:"old_value" gorm:"type:text"`
	NewValue   string    `json:"new_value" gorm:"type:text"`
	UserID     *uint     `json:"user_id"`
	Notes      string    `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// 审计动作
const (
	AuditActionIngested         = "ingested"
	AuditActionStatusChanged    = "status_changed"
	AuditActionDeclined         = "declined"
	AuditActionIssueDateChanged = "issue_date_changed"
	AuditActionPrinted          = "printed"
	AuditActionDocumentLocked   = "document_locked"
	AuditActionDocumentRenamed  = "document_renamed"
	AuditActionDocumentDeleted  = "document_deleted"
)
