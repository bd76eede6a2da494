package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

// ErrMissingAPIKey is reported on first use of the OpenAI backend when no
// credential is configured. It is fatal and never retried.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set; export the variable or switch llm.backend")

// Retry jitter bounds, matching the two backoff curves: the aggressive one
// for throttling and the gentler one for transient failures.
const (
	rateLimitJitter = 250 * time.Millisecond
	transientJitter = 200 * time.Millisecond
)

func (s *LLMService) openaiClient() (openai.Client, error) {
	s.clientOnce.Do(func() {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			s.clientErr = ErrMissingAPIKey
			return
		}

		// SDK retries are disabled so the adapter's own backoff discipline
		// stays the single source of retry behavior.
		clientOpts := []option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(time.Duration(s.cfg.TimeoutSeconds) * time.Second),
		}
		if s.cfg.BaseURL != "" {
			clientOpts = append(clientOpts, option.WithBaseURL(s.cfg.BaseURL))
		}
		s.client = openai.NewClient(clientOpts...)
	})
	return s.client, s.clientErr
}

func toOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			converted = append(converted, openai.SystemMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}
	return converted
}

// openaiChat invokes the hosted chat-completion API with retry and backoff.
// Throttling backs off at base*2^attempt plus jitter; transient failures at
// base*1.5^attempt. On the final throttled attempt, exhausted quota degrades
// to the offline heuristic when the configuration permits it.
func (s *LLMService) openaiChat(ctx context.Context, messages []model.Message, opts summarizer.ChatOptions) (string, error) {
	client, err := s.openaiClient()
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(opts.Model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
	}

	maxRetries := s.cfg.MaxRetries
	baseDelay := time.Duration(s.cfg.RetryBaseDelayMS) * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		completion, err := client.Chat.Completions.New(ctx, params)
		if err == nil {
			if len(completion.Choices) == 0 {
				return "", fmt.Errorf("openai returned no choices for %s", opts.Purpose)
			}
			return completion.Choices[0].Message.Content, nil
		}

		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			if attempt == maxRetries-1 {
				if quotaExhausted(apiErr) && !s.cfg.DisableDegradedFallback {
					note := model.Message{
						Role:    model.RoleSystem,
						Content: "[quota fallback: basic heuristic summary]",
					}
					return basicCompletion(append(append([]model.Message{}, messages...), note)), nil
				}
				return "", &summarizer.RateLimitError{Purpose: opts.Purpose, Attempts: maxRetries, Err: err}
			}
			if err := sleepCtx(ctx, backoffDelay(baseDelay, attempt, 2.0, rateLimitJitter)); err != nil {
				return "", err
			}
			continue
		}

		// Transient network / 5xx-class failure.
		if attempt == maxRetries-1 {
			return "", err
		}
		if err := sleepCtx(ctx, backoffDelay(baseDelay, attempt, 1.5, transientJitter)); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("exhausted %d attempts for %s without a result", maxRetries, opts.Purpose)
}

func quotaExhausted(apiErr *openai.Error) bool {
	return apiErr.Code == "insufficient_quota" ||
		apiErr.Type == "insufficient_quota" ||
		strings.Contains(apiErr.Message, "insufficient_quota")
}

func backoffDelay(base time.Duration, attempt int, factor float64, maxJitter time.Duration) time.Duration {
	delay := time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
	if maxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(maxJitter)))
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
