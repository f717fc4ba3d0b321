// Package ai implements the chat client used for sermon analysis, backed by
// an OpenAI-compatible completions API.
package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/sermon-evaluator/internal/config"
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	obsctx "github.com/fairyhunter13/sermon-evaluator/internal/observability"
)

// Client implements domain.AIClient against any OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	cfg     config.Config
	hc      *http.Client
	cleaner *ResponseCleaner
	counter *tokencount.Counter
}

// New constructs a chat client. The HTTP transport is wrapped with otelhttp
// so provider latency shows up in traces.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.AIHTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cleaner: NewResponseCleaner(),
		counter: tokencount.NewCounter(),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
	Messages       []chatMessage `json:"messages"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatJSON sends the prompts to the provider and returns the cleaned message
// content. Provider failures are classified into domain sentinels:
// 429 -> ErrQuotaExceeded, 401/403 -> ErrCredentialRejected.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	lg := obsctx.LoggerFromContext(ctx)
	if c.cfg.AIAPIKey == "" {
		return "", fmt.Errorf("ai.ChatJSON: %w: AI_API_KEY missing", domain.ErrCredentialRejected)
	}

	if c.cfg.AIPromptTokenBudget > 0 {
		promptTokens, err := c.counter.CountChatTokens(systemPrompt, userPrompt, c.cfg.AIModel)
		if err != nil {
			lg.Warn("prompt token count failed, skipping budget check", slog.Any("error", err))
		} else if promptTokens > c.cfg.AIPromptTokenBudget {
			return "", fmt.Errorf("ai.ChatJSON: %w: prompt is %d tokens, budget %d",
				domain.ErrInvalidArgument, promptTokens, c.cfg.AIPromptTokenBudget)
		}
	}

	if maxTokens <= 0 {
		maxTokens = c.cfg.AIMaxTokens
	}
	reqBody := chatRequest{
		Model:          c.cfg.AIModel,
		Temperature:    c.cfg.AITemperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &formatSpec{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ai.ChatJSON: marshal request: %w", err)
	}

	start := time.Now()
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AIBaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("ai.ChatJSON: build request: %w", err)
	}
	r.Header.Set("Authorization", "Bearer "+c.cfg.AIAPIKey)
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(r)
	observability.AIRequestsTotal.WithLabelValues("openai", "chat").Inc()
	observability.AIRequestDuration.WithLabelValues("openai", "chat").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("ai.ChatJSON: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ai.ChatJSON: read response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		lg.Warn("ai provider error",
			slog.String("provider", "openai"),
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.cfg.AIModel),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", snippet(bodyBytes, 512)))
		return "", fmt.Errorf("ai.ChatJSON: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return "", fmt.Errorf("ai.ChatJSON: %w: decode provider response: %v", domain.ErrMalformedResponse, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("ai.ChatJSON: %w: empty choices", domain.ErrMalformedResponse)
	}

	content := out.Choices[0].Message.Content
	cleaned, err := c.cleaner.CleanAndValidateJSON(content)
	if err != nil {
		lg.Warn("ai response not valid JSON after cleaning",
			slog.String("model", c.cfg.AIModel),
			slog.String("content", snippet([]byte(content), 256)))
		return "", fmt.Errorf("ai.ChatJSON: %w: %v", domain.ErrMalformedResponse, err)
	}

	lg.Debug("ai chat call succeeded",
		slog.String("model", c.cfg.AIModel),
		slog.Int("response_bytes", len(cleaned)),
		slog.Duration("elapsed", time.Since(start)))
	return cleaned, nil
}

// classifyStatus maps provider HTTP statuses onto domain sentinels.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: provider status 429", domain.ErrQuotaExceeded)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: provider status %d", domain.ErrCredentialRejected, status)
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: provider status %d", domain.ErrInvalidArgument, status)
	default:
		return fmt.Errorf("%w: provider status %d", domain.ErrInternal, status)
	}
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

// Transient reports whether the error is worth retrying: quota exhaustion and
// provider 5xx are transient; credential and argument errors are not.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrCredentialRejected) ||
		errors.Is(err, domain.ErrInvalidArgument) ||
		errors.Is(err, domain.ErrMalformedResponse) {
		return false
	}
	return errors.Is(err, domain.ErrQuotaExceeded) || errors.Is(err, domain.ErrInternal)
}
