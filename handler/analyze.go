package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

// AnalyzeHandler serves synchronous text analysis. The caller sends raw text
// and waits for the consolidated result in the same request.
type AnalyzeHandler struct {
	engine *summarizer.Engine
	cfg    *config.PipelineConfig
}

func NewAnalyzeHandler(engine *summarizer.Engine, cfg *config.PipelineConfig) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine: engine,
		cfg:    cfg,
	}
}

type AnalyzeRequest struct {
	Text  string `json:"text"`
	Task  string `json:"task"`
	Focus string `json:"focus"`
	// ChunkSize and ChunkOverlap override the configured defaults when > 0.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// Analyze runs the full chunk/analyze/consolidate pipeline over posted text.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	chunkSize := h.cfg.ChunkSize
	if req.ChunkSize > 0 {
		chunkSize = req.ChunkSize
	}
	chunkOverlap := h.cfg.ChunkOverlap
	if req.ChunkOverlap > 0 {
		chunkOverlap = req.ChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chunk_overlap must be smaller than chunk_size"})
		return
	}

	task := model.ParseTask(req.Task)

	pipeline := summarizer.NewPipeline(h.engine, summarizer.Options{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		MaxChunks:    h.cfg.MaxChunks,
		ChunkDelay:   h.cfg.ChunkDelay(),
		OnChunkError: h.cfg.OnChunkError,
	})

	result, err := pipeline.Run(c.Request.Context(), []string{req.Text}, task, req.Focus)
	if err != nil {
		if errors.Is(err, summarizer.ErrEmptyInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Text contains no analyzable content"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":       string(task),
		"focus":      req.Focus,
		"pages":      result.Pages,
		"chunks":     result.Chunks,
		"processed":  result.Processed,
		"partial":    result.Partial,
		"final":      result.Final,
		"error_msg":  result.ErrorMsg,
		"elapsed_ms": result.ElapsedMS,
	})
}
