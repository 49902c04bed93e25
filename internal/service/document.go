package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/model"
	"github.com/chequeflow/backend/internal/pkg/storage"
	"github.com/chequeflow/backend/internal/repository"
	"k8s.io/klog/v2"
)

type DocumentService struct {
	docRepo repository.DocumentRepository
	sinks   map[string]storage.BlobSink
	bus     *eventbus.DocumentEventBus
}

// NewDocumentService sinks 为可用的导出目标，nil 值会被忽略
func NewDocumentService(docRepo repository.DocumentRepository, bus *eventbus.DocumentEventBus, sinks ...storage.BlobSink) *DocumentService {
	s := &DocumentService{
		docRepo: docRepo,
		sinks:   make(map[string]storage.BlobSink),
		bus:     bus,
	}
	for _, sink := range sinks {
		if sink != nil {
			s.sinks[sink.Name()] = sink
		}
	}
	return s
}

// DownloadedDocument 文档原始内容
type DownloadedDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportResult 导出结果
type ExportResult struct {
	DocumentID uint   `json:"document_id"`
	Target     string `json:"target"`
	Location   string `json:"location"`
}

// BulkDeleteResult 批量删除结果，已锁定的文档被跳过
type BulkDeleteResult struct {
	Deleted []uint `json:"deleted"`
	Skipped []uint `json:"skipped"`
}

func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Document", 0, "list documents")
	}
	return docs, nil
}

// Get 返回文档元数据及其支票
func (s *DocumentService) Get(ctx context.Context, id uint) (*model.Document, error) {
	doc, err := s.docRepo.GetWithCheques(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Document", id, "get document")
	}
	return doc, nil
}

func (s *DocumentService) IsLocked(ctx context.Context, id uint) (bool, error) {
	doc, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return false, storeErr(err, "Document", id, "get document")
	}
	return doc.IsLocked, nil
}

// LockDocument 锁定文档，重复锁定视为成功
func (s *DocumentService) LockDocument(ctx context.Context, id uint) error {
	if err := s.docRepo.Lock(ctx, id); err != nil {
		return storeErr(err, "Document", id, "lock document")
	}
	klog.V(6).Infof("文档已锁定: documentID=%d", id)
	s.publish(ctx, eventbus.DocumentEvent{Type: eventbus.DocumentEventLocked, DocumentID: id})
	return nil
}

// DeleteDocument 删除未锁定的文档及其支票
func (s *DocumentService) DeleteDocument(ctx context.Context, id uint) error {
	doc, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return storeErr(err, "Document", id, "get document")
	}
	if doc.IsLocked {
		return domain.Violation(domain.ErrLocked, LockedDocumentMessage)
	}

	// 检查后仍可能被并发打印锁定，仓储层按锁定状态条件删除
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return storeErr(err, "Document", id, "delete document")
	}
	klog.V(6).Infof("文档已删除: documentID=%d, fileName=%s", id, doc.FileName)
	s.publish(ctx, eventbus.DocumentEvent{Type: eventbus.DocumentEventDeleted, DocumentID: id, FileName: doc.FileName})
	return nil
}

// DeleteAll 删除所有未锁定的文档
func (s *DocumentService) DeleteAll(ctx context.Context) (*BulkDeleteResult, error) {
	result := &BulkDeleteResult{Deleted: []uint{}, Skipped: []uint{}}

	locked, err := s.docRepo.ListIDsByLocked(ctx, true)
	if err != nil {
		return nil, storeErr(err, "Document", 0, "list locked documents")
	}
	result.Skipped = append(result.Skipped, locked...)

	unlocked, err := s.docRepo.ListIDsByLocked(ctx, false)
	if err != nil {
		return nil, storeErr(err, "Document", 0, "list unlocked documents")
	}
	for _, id := range unlocked {
		err := s.docRepo.Delete(ctx, id)
		switch {
		case err == nil:
			result.Deleted = append(result.Deleted, id)
			s.publish(ctx, eventbus.DocumentEvent{Type: eventbus.DocumentEventDeleted, DocumentID: id})
		case errors.Is(err, repository.ErrLocked):
			result.Skipped = append(result.Skipped, id)
		case errors.Is(err, repository.ErrNotFound):
			// 已被其他请求删除
		default:
			return result, storeErr(err, "Document", id, "delete document")
		}
	}
	klog.V(6).Infof("批量删除文档: deleted=%d, skipped=%d", len(result.Deleted), len(result.Skipped))
	return result, nil
}

func (s *DocumentService) RenameDocument(ctx context.Context, id uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Invalid(domain.ErrEmptyName, "Document name cannot be empty")
	}

	doc, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return storeErr(err, "Document", id, "get document")
	}
	if err := s.docRepo.Rename(ctx, id, name); err != nil {
		return storeErr(err, "Document", id, "rename document")
	}
	s.publish(ctx, eventbus.DocumentEvent{
		Type:       eventbus.DocumentEventRenamed,
		DocumentID: id,
		FileName:   name,
		OldValue:   doc.FileName,
	})
	return nil
}

func (s *DocumentService) Download(ctx context.Context, id uint) (*DownloadedDocument, error) {
	doc, err := s.docRepo.GetWithData(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Document", id, "download document")
	}
	return &DownloadedDocument{
		FileName:    storage.SanitizeFileName(doc.FileName),
		ContentType: storage.ContentTypeFor(doc.FileName),
		Data:        doc.FileData,
	}, nil
}

// Targets 返回已配置的导出目标
func (s *DocumentService) Targets() []string {
	targets := make([]string, 0, len(s.sinks))
	for name := range s.sinks {
		targets = append(targets, name)
	}
	return targets
}

// Export 将文档原始内容写入指定导出目标（local 或 minio）
func (s *DocumentService) Export(ctx context.Context, id uint, target string) (*ExportResult, error) {
	if target == "" {
		target = "local"
	}
	sink, ok := s.sinks[target]
	if !ok {
		return nil, domain.Invalid(ErrUnknownSinkTarget, fmt.Sprintf("Export target %q is not configured", target))
	}

	doc, err := s.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	location, err := sink.Put(ctx, doc.FileName, doc.Data, doc.ContentType)
	if err != nil {
		klog.Errorf("导出文档失败: documentID=%d, target=%s, error=%v", id, target, err)
		return nil, domain.Storage("export document", err)
	}
	return &ExportResult{DocumentID: id, Target: target, Location: location}, nil
}

func (s *DocumentService) publish(ctx context.Context, event eventbus.DocumentEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event.Type, event); err != nil {
		klog.Warningf("发布文档事件失败: type=%s, documentID=%d, error=%v", event.Type, event.DocumentID, err)
	}
}
