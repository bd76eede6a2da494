package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
)

// NoContentPlaceholder is the final result substituted when no partial
// output survived chunk analysis.
const NoContentPlaceholder = "No content could be processed"

// Options controls windowing and failure handling for one pipeline run.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	// MaxChunks caps how many windows of a very large document are
	// analyzed; 0 means unlimited.
	MaxChunks int
	// ChunkDelay is the pause between consecutive chunk calls, applied to
	// stay under upstream rate limits.
	ChunkDelay time.Duration
	// OnChunkError selects the per-window failure policy:
	// config.PolicyStopOnRateLimit or config.PolicyContinue.
	OnChunkError string
}

// Result is the structured outcome of one pipeline run. A run that reaches
// the orchestrator always produces a Result; failures after windowing are
// embedded, never raised.
type Result struct {
	Pages     int      `json:"pages"`
	Chunks    int      `json:"chunks"`
	Processed int      `json:"processed"`
	Partial   []string `json:"partial"`
	Final     string   `json:"final"`
	ErrorMsg  string   `json:"error_msg,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// Pipeline sequences windowing, per-chunk analysis and consolidation.
type Pipeline struct {
	engine *Engine
	opts   Options
}

func NewPipeline(engine *Engine, opts Options) *Pipeline {
	return &Pipeline{engine: engine, opts: opts}
}

// Run processes the document pages under one task. It returns ErrEmptyInput
// before any model call when the pages contain no analyzable text; every
// later failure is recorded inside the Result. Windows are analyzed strictly
// in order and cancellation is honored between chunk calls, not mid-call.
func (p *Pipeline) Run(ctx context.Context, pages []string, task model.Task, focus string) (*Result, error) {
	start := time.Now()

	windows := Chunk(pages, p.opts.ChunkSize, p.opts.ChunkOverlap)
	if len(windows) == 0 {
		return nil, ErrEmptyInput
	}

	if p.opts.MaxChunks > 0 && len(windows) > p.opts.MaxChunks {
		slog.Warn("document too large, truncating windows",
			"task", string(task),
			"windows", len(windows),
			"max_chunks", p.opts.MaxChunks,
		)
		windows = windows[:p.opts.MaxChunks]
	}

	result := &Result{
		Pages:   len(pages),
		Chunks:  len(windows),
		Partial: make([]string, 0, len(windows)),
	}

	for i, window := range windows {
		if err := ctx.Err(); err != nil {
			result.ErrorMsg = fmt.Sprintf("canceled at chunk %d/%d: %v", i+1, len(windows), err)
			break
		}

		chunkStart := time.Now()
		out, err := p.engine.AnalyzeChunk(ctx, window, task)
		if err != nil {
			if p.opts.OnChunkError == config.PolicyStopOnRateLimit && IsRateOrQuota(err) {
				slog.Warn("stopping analysis on rate limit",
					"chunk", i+1, "total", len(windows), "error", err)
				result.Partial = append(result.Partial,
					fmt.Sprintf("[Stopped at chunk %d/%d due to rate limit]", i+1, len(windows)))
				break
			}
			slog.Warn("chunk analysis failed, continuing",
				"chunk", i+1, "total", len(windows), "error", err)
			result.Partial = append(result.Partial,
				fmt.Sprintf("[Error in chunk %d: %v]", i+1, err))
			continue
		}

		result.Partial = append(result.Partial, out)
		slog.Debug("chunk analyzed",
			"chunk", i+1,
			"total", len(windows),
			"elapsed_ms", time.Since(chunkStart).Milliseconds(),
		)

		if i < len(windows)-1 && p.opts.ChunkDelay > 0 {
			select {
			case <-time.After(p.opts.ChunkDelay):
			case <-ctx.Done():
			}
		}
	}

	result.Processed = len(result.Partial)

	if result.Processed == 0 {
		result.Final = NoContentPlaceholder
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result, nil
	}

	final, err := p.engine.Consolidate(ctx, result.Partial, task, focus)
	if err != nil {
		slog.Error("consolidation failed", "task", string(task), "error", err)
		result.ErrorMsg = fmt.Sprintf("consolidation failed: %v", err)
	} else {
		result.Final = final
	}

	result.ElapsedMS = time.Since(start).Milliseconds()
	return result, nil
}
