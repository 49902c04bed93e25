package eventbus

type DocumentEventType string

const (
	DocumentEventIngested DocumentEventType = "Ingested"
	DocumentEventLocked   DocumentEventType = "Locked"
	DocumentEventRenamed  DocumentEventType = "Renamed"
	DocumentEventDeleted  DocumentEventType = "Deleted"
)

type DocumentEvent struct {
	Type       DocumentEventType
	DocumentID uint
	FileName   string
	OldValue   string
	Created    int // 导入成功的支票数
	Skipped    int // 导入时跳过的行数
}

type DocumentEventHandler = Handler[DocumentEvent]
type DocumentEventBus = Bus[DocumentEventType, DocumentEvent]

func NewDocumentEventBus() *DocumentEventBus {
	return NewBus[DocumentEventType, DocumentEvent]()
}
