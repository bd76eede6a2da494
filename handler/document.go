package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/service"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

// DocumentHandler serves uploaded document analysis. Uploads are processed
// asynchronously; clients poll the status endpoint until the run finishes.
type DocumentHandler struct {
	extractor service.PageProvider
	archive   *service.ArchiveService // nil when archiving is disabled
	engine    *summarizer.Engine
	cfg       *config.PipelineConfig
	store     *service.AnalysisStore
}

func NewDocumentHandler(extractor service.PageProvider, archive *service.ArchiveService, engine *summarizer.Engine, cfg *config.PipelineConfig) *DocumentHandler {
	return &DocumentHandler{
		extractor: extractor,
		archive:   archive,
		engine:    engine,
		cfg:       cfg,
		store:     service.GetAnalysisStore(),
	}
}

// Upload accepts a PDF document and starts an analysis run
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	pages, err := h.extractor.Pages(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, service.ErrNoExtractableText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Document contains no extractable text"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse PDF: " + err.Error()})
		return
	}

	task := model.ParseTask(c.PostForm("task"))
	focus := c.PostForm("focus")

	analysisID := uuid.New().String()
	analysis := &model.Analysis{
		ID:        analysisID,
		Filename:  header.Filename,
		Task:      task,
		Focus:     focus,
		Status:    model.StatusPending,
		Pages:     len(pages),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Archive the original bytes before processing starts; processing itself
	// only reads the in-memory page text.
	if h.archive != nil {
		objectName := fmt.Sprintf("%s/%s", analysisID, header.Filename)
		url, err := h.archive.ArchiveDocument(c.Request.Context(), objectName, data, "application/pdf")
		if err != nil {
			slog.Warn("document archiving failed",
				"document_id", analysisID, "error", err)
		} else {
			analysis.ArchiveURL = url
		}
	}

	h.store.Save(analysis)

	go h.process(analysisID, pages, task, focus)

	c.JSON(http.StatusAccepted, gin.H{
		"id":       analysisID,
		"filename": header.Filename,
		"task":     string(task),
		"pages":    len(pages),
		"status":   model.StatusPending,
	})
}

// process runs the pipeline for an uploaded document asynchronously. It uses
// a background context so the run outlives the upload request.
func (h *DocumentHandler) process(id string, pages []string, task model.Task, focus string) {
	log := slog.With("document_id", id, "task", string(task))
	log.Info("starting document analysis", "pages", len(pages))

	h.store.UpdateStatus(id, model.StatusProcessing, "")

	pipeline := summarizer.NewPipeline(h.engine, summarizer.Options{
		ChunkSize:    h.cfg.ChunkSize,
		ChunkOverlap: h.cfg.ChunkOverlap,
		MaxChunks:    h.cfg.MaxChunks,
		ChunkDelay:   h.cfg.ChunkDelay(),
		OnChunkError: h.cfg.OnChunkError,
	})

	result, err := pipeline.Run(context.Background(), pages, task, focus)
	if err != nil {
		log.Error("document analysis failed", "error", err)
		h.store.UpdateStatus(id, model.StatusFailed, err.Error())
		return
	}

	h.store.UpdateResult(id, result)
	log.Info("document analysis finished",
		"chunks", result.Chunks,
		"processed", result.Processed,
		"elapsed_ms", result.ElapsedMS,
	)
}

// List returns all analyses, newest first
func (h *DocumentHandler) List(c *gin.Context) {
	analyses := h.store.List()

	// Return without partial outputs for list view
	result := make([]gin.H, len(analyses))
	for i, a := range analyses {
		result[i] = gin.H{
			"id":         a.ID,
			"filename":   a.Filename,
			"task":       string(a.Task),
			"status":     a.Status,
			"pages":      a.Pages,
			"created_at": a.CreatedAt.Format(time.RFC3339),
			"updated_at": a.UpdatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"analyses": result})
}

// Get returns a single analysis with its full result
func (h *DocumentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	analysis := h.store.Get(id)
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetStatus returns the processing status of an analysis
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	analysis := h.store.Get(id)
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        analysis.ID,
		"status":    analysis.Status,
		"chunks":    analysis.Chunks,
		"processed": analysis.Processed,
		"error_msg": analysis.ErrorMsg,
	})
}

// Delete removes an analysis and its archived source document
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	analysis := h.store.Get(id)
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	if h.archive != nil && analysis.ArchiveURL != "" {
		objectName := fmt.Sprintf("%s/%s", analysis.ID, analysis.Filename)
		if err := h.archive.DeleteDocument(c.Request.Context(), objectName); err != nil {
			slog.Warn("failed to delete archived document",
				"document_id", id, "error", err)
		}
	}

	h.store.Delete(id)

	c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted"})
}
