package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
)

// Chat call parameters for one window or consolidation exchange.
const (
	chunkTemperature = 0.35
	chunkMaxTokens   = 300
	finalTemperature = 0.3
	finalMaxTokens   = 900
)

// ChatOptions carries the per-call parameters passed to a Backend.
type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// Purpose tags the call for error annotation and logging.
	Purpose string
}

// Backend produces chat completion text from a message sequence. A Backend
// either returns real content or an error, never a silently empty failure;
// an empty string with nil error is a valid minimal completion.
type Backend interface {
	Chat(ctx context.Context, messages []model.Message, opts ChatOptions) (string, error)
}

// Engine applies task templates to text windows and partial outputs through
// a Backend. It holds no per-run state and is safe for concurrent use.
type Engine struct {
	backend Backend
	model   string
}

func NewEngine(backend Backend, modelName string) *Engine {
	return &Engine{backend: backend, model: modelName}
}

// AnalyzeChunk runs the task's chunk instruction over one window and returns
// the trimmed model output. Backend errors propagate unchanged; retrying is
// the backend's concern.
func (e *Engine) AnalyzeChunk(ctx context.Context, window string, task model.Task) (string, error) {
	pair := Templates(task)
	prompt := fmt.Sprintf("%s\nText:\n%s\n---\nOutput:", pair.Chunk, window)

	out, err := e.backend.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: SystemBase},
		{Role: model.RoleUser, Content: prompt},
	}, ChatOptions{
		Model:       e.model,
		Temperature: chunkTemperature,
		MaxTokens:   chunkMaxTokens,
		Purpose:     "analyze_chunk",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Consolidate merges the ordered partial outputs into one final result using
// the task's final instruction, with an optional focus directive appended.
// Callers must not invoke it with zero outputs; the orchestrator substitutes
// a placeholder result instead.
func (e *Engine) Consolidate(ctx context.Context, outputs []string, task model.Task, focus string) (string, error) {
	pair := Templates(task)

	focusPart := ""
	if focus != "" {
		focusPart = fmt.Sprintf(" Additional focus: %s.", focus)
	}
	joined := strings.Join(outputs, "\n")
	prompt := fmt.Sprintf("%s%s\nRaw extracted items:\n%s\n---\nFinal consolidated output:", pair.Final, focusPart, joined)

	out, err := e.backend.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: SystemBase},
		{Role: model.RoleUser, Content: prompt},
	}, ChatOptions{
		Model:       e.model,
		Temperature: finalTemperature,
		MaxTokens:   finalMaxTokens,
		Purpose:     "consolidate_outputs",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
