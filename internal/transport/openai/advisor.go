// Package openai asks an OpenAI-compatible chat model which column of a
// sheet holds a field the heuristics could not map.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/field"
	"github.com/kailas-cloud/pricedex/internal/metrics"
)

// noAnswer is the reply the model is told to give when no column fits.
const noAnswer = "NONE"

// DefaultTimeout bounds a single advisor call.
const DefaultTimeout = 20 * time.Second

const systemPrompt = `You map spreadsheet columns of supplier price lists to product fields.
Answer with the exact column name from the list, copied verbatim, and nothing else.
If no column fits, answer ` + noAnswer + `.`

var fieldHints = map[field.Type]string{
	field.SKU:         "article / SKU / vendor code",
	field.Name:        "product name or description",
	field.Brand:       "brand or manufacturer",
	field.Category:    "product category",
	field.Subcategory: "product subcategory",
	field.Price:       "unit price",
	field.Unit:        "unit of measure",
	field.Stock:       "quantity in stock",
	field.URL:         "product link",
}

// Advisor suggests columns through a chat completion model.
type Advisor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds the chat model settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewAdvisor creates an OpenAI-compatible column advisor.
func NewAdvisor(cfg *Config) *Advisor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Advisor{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}
}

// SuggestColumn returns the column the model picked for ft, or "" when it
// picked none or answered with a name that is not a column.
func (a *Advisor) SuggestColumn(ctx context.Context, ft field.Type, columns []string, samples [][]string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		MaxTokens:   64,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(ft, columns, samples)},
		},
	})
	if err != nil {
		metrics.AdvisorRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.AdvisorRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrAdvisorError)
	}

	answer := cleanAnswer(resp.Choices[0].Message.Content)
	column := matchColumn(answer, columns)
	status := "success"
	if column == "" {
		status = "no_match"
	}
	metrics.AdvisorRequestsTotal.WithLabelValues(a.model, status).Inc()

	a.logger.Debug("column advisor answered",
		zap.String("field", ft.String()),
		zap.String("answer", answer),
		zap.String("column", column),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return column, nil
}

func buildPrompt(ft field.Type, columns []string, samples [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Field: %s", ft)
	if hint, ok := fieldHints[ft]; ok {
		fmt.Fprintf(&b, " (%s)", hint)
	}
	b.WriteString("\nColumns:\n")
	for _, c := range columns {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	if len(samples) > 0 {
		b.WriteString("Sample rows:\n")
		for _, row := range samples {
			b.WriteString(strings.Join(row, " | "))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`«»")
	return strings.TrimSpace(s)
}

// matchColumn resolves the answer to a column name, ignoring case.
func matchColumn(answer string, columns []string) string {
	if answer == "" || strings.EqualFold(answer, noAnswer) {
		return ""
	}
	for _, c := range columns {
		if c == answer {
			return c
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c, answer) {
			return c
		}
	}
	return ""
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAdvisorError.
func parseAPIError(err error) error {
	wrap := domain.ErrAdvisorError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %w", reqErr.HTTPStatusCode, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w: %w", wrap, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
