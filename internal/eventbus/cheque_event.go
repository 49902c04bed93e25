package eventbus

import "github.com/shopspring/decimal"

type ChequeEventType string

const (
	ChequeEventStatusChanged    ChequeEventType = "StatusChanged"
	ChequeEventDeclined         ChequeEventType = "Declined"
	ChequeEventIssueDateChanged ChequeEventType = "IssueDateChanged"
	ChequeEventPrinted          ChequeEventType = "Printed"
)

type ChequeEvent struct {
	Type       ChequeEventType
	ChequeID   uint
	DocumentID uint
	OldValue   string
	NewValue   string
	UserID     *uint
	Notes      string
	Amount     decimal.Decimal
	PrintCount int
}

type ChequeEventHandler = Handler[ChequeEvent]
type ChequeEventBus = Bus[ChequeEventType, ChequeEvent]

func NewChequeEventBus() *ChequeEventBus {
	return NewBus[ChequeEventType, ChequeEvent]()
}
