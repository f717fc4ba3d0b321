package ai

import (
	"log/slog"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/sermon-evaluator/internal/config"
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	obsctx "github.com/fairyhunter13/sermon-evaluator/internal/observability"
)

// RetryClient decorates a domain.AIClient with exponential backoff. Only
// transient failures are retried; credential, argument, and malformed-output
// errors surface on the first attempt.
type RetryClient struct {
	inner domain.AIClient
	cfg   config.Config
}

// NewRetryClient wraps inner with the backoff policy from cfg.
func NewRetryClient(inner domain.AIClient, cfg config.Config) *RetryClient {
	return &RetryClient{inner: inner, cfg: cfg}
}

// ChatJSON implements domain.AIClient.
func (c *RetryClient) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	lg := obsctx.LoggerFromContext(ctx)
	var content string
	attempt := 0
	op := func() error {
		attempt++
		out, err := c.inner.ChatJSON(ctx, systemPrompt, userPrompt, maxTokens)
		if err != nil {
			if !Transient(err) {
				return backoff.Permanent(err)
			}
			lg.Warn("ai chat attempt failed, will retry",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}
		content = out
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.cfg.AIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return "", err
	}
	return content, nil
}
