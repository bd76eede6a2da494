package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

// LLMService is the model backend adapter: one configured strategy among the
// hosted OpenAI API, a local Ollama service and the deterministic offline
// heuristic. It implements summarizer.Backend and is safe for concurrent
// use; the OpenAI client is built once on first use and read-only after.
type LLMService struct {
	cfg    *config.LLMConfig
	ollama *ollamaClient

	clientOnce sync.Once
	client     openai.Client
	clientErr  error
}

func NewLLMService(cfg *config.LLMConfig) *LLMService {
	s := &LLMService{cfg: cfg}
	if cfg.Backend == config.BackendOllama {
		s.ollama = newOllamaClient(cfg.OllamaURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
	}
	return s
}

// Chat produces completion text for the message sequence via the configured
// backend. It returns real content or an error, never both empty; an empty
// string with nil error is a valid minimal completion.
func (s *LLMService) Chat(ctx context.Context, messages []model.Message, opts summarizer.ChatOptions) (string, error) {
	switch s.cfg.Backend {
	case config.BackendBasic:
		return basicCompletion(messages), nil

	case config.BackendOllama:
		out, err := s.ollama.Chat(ctx, messages, opts)
		if err != nil {
			// Local service down or answered garbage: fall straight back to
			// the offline heuristic with a note describing the failure.
			slog.Warn("ollama call failed, using offline heuristic",
				"purpose", opts.Purpose, "error", err)
			note := model.Message{
				Role:    model.RoleSystem,
				Content: fmt.Sprintf("[ollama error fallback] %v", err),
			}
			return basicCompletion(append(append([]model.Message{}, messages...), note)), nil
		}
		return out, nil

	default:
		return s.openaiChat(ctx, messages, opts)
	}
}
