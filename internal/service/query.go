package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/chequeflow/backend/internal/domain"
	"github.com/chequeflow/backend/internal/pkg/metrics"
	"github.com/chequeflow/backend/internal/repository"
	"k8s.io/klog/v2"
)

// deniedKeywords 原始输入转大写后包含任意一个即拒绝
var deniedKeywords = []string{"DROP", "DELETE", "TRUNCATE", "ALTER"}

var (
	lineComment  = regexp.MustCompile(`--[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	writeWords   = regexp.MustCompile(`\b(INSERT|UPDATE|REPLACE|CREATE|ATTACH|DETACH|PRAGMA|VACUUM|REINDEX|GRANT|REVOKE)\b`)
)

// QueryService 只读的即席查询
type QueryService struct {
	queryRepo repository.QueryRepository
	maxRows   int
}

func NewQueryService(queryRepo repository.QueryRepository, maxRows int) *QueryService {
	return &QueryService{queryRepo: queryRepo, maxRows: maxRows}
}

// Execute 校验并执行只读查询
func (s *QueryService) Execute(ctx context.Context, query string) (*repository.QueryResult, error) {
	statement, err := ValidateReadQuery(query)
	if err != nil {
		metrics.AdHocQueries.WithLabelValues(metrics.OutcomeRejected).Inc()
		klog.V(6).Infof("即席查询被拒绝: error=%v", err)
		return nil, err
	}

	result, err := s.queryRepo.ReadOnly(ctx, statement, s.maxRows)
	if err != nil {
		metrics.AdHocQueries.WithLabelValues(metrics.OutcomeFailed).Inc()
		klog.V(6).Infof("即席查询执行失败: error=%v", err)
		return nil, domain.Invalid(ErrQueryFailed, fmt.Sprintf("Query failed: %v", err))
	}

	metrics.AdHocQueries.WithLabelValues(metrics.OutcomeOK).Inc()
	klog.V(6).Infof("即席查询完成: rows=%d", len(result.Rows))
	return result, nil
}

// ValidateReadQuery 返回去掉注释和结尾分号后的语句
// 仅允许单条 SELECT/WITH 语句
func ValidateReadQuery(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", domain.Invalid(ErrEmptyQuery, "Query cannot be empty")
	}

	upper := strings.ToUpper(query)
	for _, keyword := range deniedKeywords {
		if strings.Contains(upper, keyword) {
			return "", forbiddenQuery(fmt.Sprintf("Query contains forbidden keyword: %s", keyword))
		}
	}

	statement := blockComment.ReplaceAllString(query, " ")
	statement = lineComment.ReplaceAllString(statement, " ")
	statement = strings.TrimSpace(statement)
	statement = strings.TrimSpace(strings.TrimRight(statement, "; \t\r\n"))
	if statement == "" {
		return "", domain.Invalid(ErrEmptyQuery, "Query cannot be empty")
	}
	if strings.Contains(statement, ";") {
		return "", forbiddenQuery("Only a single statement is allowed")
	}

	upperStatement := strings.ToUpper(statement)
	fields := strings.Fields(upperStatement)
	if first := strings.TrimLeft(fields[0], "("); first != "SELECT" && first != "WITH" {
		return "", forbiddenQuery("Only SELECT queries are allowed")
	}
	if word := writeWords.FindString(upperStatement); word != "" {
		return "", forbiddenQuery(fmt.Sprintf("Query contains forbidden keyword: %s", word))
	}
	return statement, nil
}

func forbiddenQuery(message string) error {
	return domain.Forbidden(ErrForbiddenQuery, message)
}
