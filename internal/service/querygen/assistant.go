package querygen

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chequeflow/backend/config"
	"github.com/chequeflow/backend/internal/repository"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

var (
	// ErrAssistantDisabled 未配置 LLM API Key
	ErrAssistantDisabled = errors.New("query assistant is not configured")
	ErrEmptyQuestion     = errors.New("question cannot be empty")
	ErrNoSQL             = errors.New("model reply did not contain a SQL statement")
)

const systemPrompt = `You translate questions about a cheque register into a single read-only SQL SELECT statement.

Tables:
documents(id INTEGER PRIMARY KEY, file_name TEXT, created_at DATETIME, is_locked BOOLEAN)
cheques(id INTEGER PRIMARY KEY, document_id INTEGER REFERENCES documents(id), cheque_number TEXT,
        amount DECIMAL(20,2), client_name TEXT, status TEXT, issue_date TEXT, date_field TEXT,
        print_count INTEGER, current_signatures INTEGER, first_signature_user_id INTEGER,
        second_signature_user_id INTEGER, remarks TEXT, decline_reason TEXT)
audit_entries(id INTEGER PRIMARY KEY, cheque_id INTEGER, document_id INTEGER, action TEXT,
        old_value TEXT, new_value TEXT, user_id INTEGER, notes TEXT, created_at DATETIME)

cheques.status is one of 'Pending', 'Approved', 'Declined'. Dates in issue_date are formatted YYYY-MM-DD.
Never modify data. Reply with the SQL statement only, without explanation.`

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// Executor 执行经过校验的只读查询
type Executor interface {
	Execute(ctx context.Context, query string) (*repository.QueryResult, error)
}

// Assistant 将自然语言问题转换为 SQL 并通过只读查询网关执行
type Assistant struct {
	chatModel model.BaseChatModel
	executor  Executor
}

// Answer 问题、生成的 SQL 及执行结果
type Answer struct {
	Question string                  `json:"question"`
	SQL      string                  `json:"sql"`
	Result   *repository.QueryResult `json:"result"`
}

// NewAssistant chatModel 为 nil 时返回的助手不可用
func NewAssistant(chatModel model.BaseChatModel, executor Executor) *Assistant {
	return &Assistant{chatModel: chatModel, executor: executor}
}

// NewChatModel 根据配置创建 OpenAI 兼容的 ChatModel，未配置 API Key 时返回 ErrAssistantDisabled
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAssistantDisabled
	}

	modelConfig := &openai.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	}
	if cfg.APIURL != "" {
		modelConfig.BaseURL = cfg.APIURL
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(ctx, modelConfig)
	if err != nil {
		klog.Errorf("[QueryAssistant] 创建 ChatModel 失败: %v", err)
		return nil, err
	}
	klog.V(6).Infof("[QueryAssistant] ChatModel 创建成功: model=%s", cfg.Model)
	return chatModel, nil
}

func (a *Assistant) Enabled() bool {
	return a != nil && a.chatModel != nil
}

// Generate 生成 SQL，不执行
func (a *Assistant) Generate(ctx context.Context, question string) (string, error) {
	if !a.Enabled() {
		return "", ErrAssistantDisabled
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	reply, err := a.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(question),
	})
	if err != nil {
		klog.Errorf("[QueryAssistant] 调用模型失败: %v", err)
		return "", fmt.Errorf("generate sql: %w", err)
	}

	sql := ExtractSQL(reply.Content)
	if sql == "" {
		return "", ErrNoSQL
	}
	klog.V(6).Infof("[QueryAssistant] 生成 SQL: question=%q, sql=%q", question, sql)
	return sql, nil
}

// Ask 生成 SQL 并交给查询网关执行，网关的所有校验依然生效
func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	sql, err := a.Generate(ctx, question)
	if err != nil {
		return nil, err
	}
	result, err := a.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	return &Answer{Question: strings.TrimSpace(question), SQL: sql, Result: result}, nil
}

// ExtractSQL 去掉 markdown 代码块和结尾分号
func ExtractSQL(reply string) string {
	text := strings.TrimSpace(reply)
	if match := fencePattern.FindStringSubmatch(text); match != nil {
		text = match[1]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "sql\n")
	return strings.TrimSpace(strings.TrimRight(text, "; \t\r\n"))
}
