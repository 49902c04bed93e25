package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"k8s.io/klog/v2"

	"github.com/chequeflow/backend/config"
	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/handler"
	"github.com/chequeflow/backend/internal/pkg/database"
	"github.com/chequeflow/backend/internal/pkg/metrics"
	"github.com/chequeflow/backend/internal/pkg/storage"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/chequeflow/backend/internal/router"
	"github.com/chequeflow/backend/internal/service"
	"github.com/chequeflow/backend/internal/service/querygen"
	"github.com/chequeflow/backend/internal/subscriber"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()
	ctx := context.Background()

	if cfg.Database.Type != "mysql" {
		if dir := sqliteDir(cfg.Database.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatalf("Failed to create data directory: %v", err)
			}
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 指标
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(registry)

	// 初始化 Repository
	docRepo := repository.NewDocumentRepository(db)
	chequeRepo := repository.NewChequeRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	queryRepo := repository.NewQueryRepository(db)

	// 事件总线与订阅者
	chequeBus := eventbus.NewChequeEventBus()
	docBus := eventbus.NewDocumentEventBus()
	subscriber.NewAuditSubscriber(auditRepo).Register(chequeBus, docBus)
	subscriber.NewMetricsSubscriber().Register(chequeBus, docBus)

	// 导出目标
	sinks := []storage.BlobSink{storage.NewLocalSink(cfg.Storage.ExportDir)}
	if cfg.Storage.MinIO.Enabled() {
		minioSink, err := storage.NewMinIOSink(ctx, cfg.Storage.MinIO)
		if err != nil {
			klog.Warningf("MinIO 导出不可用: %v", err)
		} else {
			sinks = append(sinks, minioSink)
		}
	}

	// 初始化 Service
	chequeService := service.NewChequeService(cfg.Lifecycle, chequeRepo, chequeBus, docBus)
	docService := service.NewDocumentService(docRepo, docBus, sinks...)
	ingestionService := service.NewIngestionService(docRepo, cfg.Ingestion.Sheet, docBus)
	queryService := service.NewQueryService(queryRepo, cfg.Query.MaxRows)
	auditService := service.NewAuditService(auditRepo)

	var assistant *querygen.Assistant
	chatModel, err := querygen.NewChatModel(ctx, cfg.LLM)
	switch {
	case err == nil:
		assistant = querygen.NewAssistant(chatModel, queryService)
	case errors.Is(err, querygen.ErrAssistantDisabled):
		klog.V(6).Info("未配置 LLM API Key，查询助手不可用")
	default:
		klog.Warningf("查询助手初始化失败: %v", err)
	}

	// 初始化 Handler
	docHandler := handler.NewDocumentHandler(docService, ingestionService)
	chequeHandler := handler.NewChequeHandler(chequeService, auditService)
	queryHandler := handler.NewQueryHandler(queryService, assistant)
	verbalizeHandler := handler.NewVerbalizeHandler(chequeService)

	// 设置路由
	r := router.Setup(cfg, registry, docHandler, chequeHandler, queryHandler, verbalizeHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// sqliteDir 返回 sqlite 文件所在目录，内存库返回空
func sqliteDir(dsn string) string {
	path := dsn
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "file:")
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return ""
	}
	return filepath.Dir(path)
}
