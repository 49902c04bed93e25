package subscriber

import (
	"context"

	"github.com/chequeflow/backend/internal/eventbus"
	"github.com/chequeflow/backend/internal/pkg/metrics"
)

// MetricsSubscriber 根据事件累加 prometheus 计数器
type MetricsSubscriber struct{}

func NewMetricsSubscriber() *MetricsSubscriber {
	return &MetricsSubscriber{}
}

func (s *MetricsSubscriber) Register(chequeBus *eventbus.ChequeEventBus, docBus *eventbus.DocumentEventBus) {
	if chequeBus != nil {
		chequeBus.Subscribe(eventbus.ChequeEventStatusChanged, s.handleTransition)
		chequeBus.Subscribe(eventbus.ChequeEventDeclined, s.handleTransition)
		chequeBus.Subscribe(eventbus.ChequeEventPrinted, s.handlePrinted)
	}
	if docBus != nil {
		docBus.Subscribe(eventbus.DocumentEventIngested, s.handleIngested)
	}
}

func (s *MetricsSubscriber) handleTransition(ctx context.Context, event eventbus.ChequeEvent) error {
	metrics.ChequeTransitions.WithLabelValues(event.NewValue).Inc()
	return nil
}

func (s *MetricsSubscriber) handlePrinted(ctx context.Context, event eventbus.ChequeEvent) error {
	metrics.ChequePrints.Inc()
	return nil
}

func (s *MetricsSubscriber) handleIngested(ctx context.Context, event eventbus.DocumentEvent) error {
	metrics.DocumentsIngested.Inc()
	metrics.ChequesIngested.Add(float64(event.Created))
	metrics.IngestionRowsSkipped.Add(float64(event.Skipped))
	return nil
}
