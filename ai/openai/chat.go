package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// parseAttempts is how many replies are requested before giving up on malformed JSON.
const parseAttempts = 3

var validate = validator.New()

// chat wraps one model with the retry and JSON handling shared by all services.
type chat struct {
	client      llms.Model
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// newClient creates an OpenAI-compatible langchaingo client for model.
func newClient(config *ai.Config, model string) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(model),
	)
}

func newChat(client llms.Model, config *ai.Config, component string) *chat {
	return &chat{
		client:      client,
		temperature: config.Temperature,
		maxRetries:  config.MaxRetries,
		retryDelay:  config.RetryDelay,
		logger:      slog.Default().With("component", component),
	}
}

// generate sends a system and human message and returns the first choice's text.
// Transient failures are retried with backoff; the final failure wraps core.ErrCollaborator.
func (c *chat) generate(ctx context.Context, system, human string, jsonMode bool) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(human)},
		},
	}
	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	var text string
	err := ai.RetryWithBackoff(ctx, func() error {
		response, err := c.client.GenerateContent(ctx, content, opts...)
		if err != nil {
			err = openai.MapError(err)
			c.logger.Warn("failed to generate content", "err", err)
			if !retryable(err) {
				return ai.Permanent(err)
			}
			return err
		}
		if len(response.Choices) < 1 || response.Choices[0] == nil {
			return ai.ErrEmptyResponse
		}
		text = response.Choices[0].Content
		return nil
	}, c.maxRetries, c.retryDelay)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrCollaborator, err)
	}
	return text, nil
}

// retryable reports whether a mapped model error may succeed on another attempt.
func retryable(err error) bool {
	var llmErr *llms.Error
	if !errors.As(err, &llmErr) {
		return true
	}
	switch llmErr.Code {
	case llms.ErrCodeAuthentication,
		llms.ErrCodeInvalidRequest,
		llms.ErrCodeResourceNotFound,
		llms.ErrCodeTokenLimit,
		llms.ErrCodeContentFilter,
		llms.ErrCodeQuotaExceeded,
		llms.ErrCodeNotImplemented,
		llms.ErrCodeCanceled:
		return false
	}
	return true
}

// generateJSON requests a JSON reply and decodes it into a fresh T, asking
// again when the reply does not parse or fails its validate tags.
func generateJSON[T any](ctx context.Context, c *chat, system, human string) (T, error) {
	var lastErr error
	for attempt := 0; attempt < parseAttempts; attempt++ {
		text, err := c.generate(ctx, system, human, true)
		if err != nil {
			var zero T
			return zero, err
		}

		var out T
		responseText := repairJSON(stripFences(text))
		if err := json.Unmarshal([]byte(responseText), &out); err != nil {
			lastErr = err
			c.logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		if err := validate.Struct(out); err != nil {
			lastErr = err
			c.logger.Warn("model response failed validation",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		return out, nil
	}

	c.logger.Error("failed to parse model response after retries", "err", lastErr)
	var zero T
	return zero, fmt.Errorf("%w: %w: %w", core.ErrCollaborator, ai.ErrMalformedResponse, lastErr)
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
