package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chequeflow"

var (
	ChequeTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cheque_transitions_total", Help: "Number of cheque status transitions by target status."},
		[]string{"to"},
	)
	ChequePrints = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "cheque_prints_total", Help: "Number of recorded cheque prints."},
	)
	DocumentsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_ingested_total", Help: "Number of ingested spreadsheet documents."},
	)
	ChequesIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "cheques_ingested_total", Help: "Number of cheques created by ingestion."},
	)
	IngestionRowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "ingestion_rows_skipped_total", Help: "Number of spreadsheet rows skipped during ingestion."},
	)
	AdHocQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "adhoc_queries_total", Help: "Number of ad-hoc queries by outcome."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
		[]string{"limiter"},
	)
)

// 查询结果标签
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ChequeTransitions)
	reg.MustRegister(ChequePrints)
	reg.MustRegister(DocumentsIngested)
	reg.MustRegister(ChequesIngested)
	reg.MustRegister(IngestionRowsSkipped)
	reg.MustRegister(AdHocQueries)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
