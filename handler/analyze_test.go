package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/service"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		ChunkSize:    500,
		ChunkOverlap: 50,
		MaxChunks:    20,
		ChunkDelayMS: 0,
		OnChunkError: config.PolicyContinue,
	}
}

// offlineEngine wires the heuristic backend so handler tests never touch a
// remote model.
func offlineEngine() *summarizer.Engine {
	svc := service.NewLLMService(&config.LLMConfig{
		Backend:    config.BackendBasic,
		MaxRetries: 3,
	})
	return summarizer.NewEngine(svc, "gpt-4o-mini")
}

func analyzeRouter(h *AnalyzeHandler) *gin.Engine {
	router := gin.New()
	router.POST("/api/analyze", h.Analyze)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeHandlerInvalidBody(t *testing.T) {
	handler := NewAnalyzeHandler(offlineEngine(), testPipelineConfig())
	router := analyzeRouter(handler)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestAnalyzeHandlerEmptyText(t *testing.T) {
	handler := NewAnalyzeHandler(offlineEngine(), testPipelineConfig())
	router := analyzeRouter(handler)

	tests := []struct {
		name string
		text string
	}{
		{"missing text", ""},
		{"whitespace only", "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/analyze", AnalyzeRequest{Text: tt.text, Task: "summary"})
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestAnalyzeHandlerInvalidOverlap(t *testing.T) {
	handler := NewAnalyzeHandler(offlineEngine(), testPipelineConfig())
	router := analyzeRouter(handler)

	w := postJSON(router, "/api/analyze", AnalyzeRequest{
		Text:         "Some contract clause text.",
		Task:         "summary",
		ChunkSize:    100,
		ChunkOverlap: 100,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for overlap >= size, got %d", w.Code)
	}

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	if !strings.Contains(response["error"], "chunk_overlap") {
		t.Errorf("Expected overlap validation error, got %q", response["error"])
	}
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	handler := NewAnalyzeHandler(offlineEngine(), testPipelineConfig())
	router := analyzeRouter(handler)

	w := postJSON(router, "/api/analyze", AnalyzeRequest{
		Text:  "The supplier shall indemnify the customer for all losses. Payment is due within thirty days. Late payment accrues interest at two percent monthly.",
		Task:  "summary",
		Focus: "payment terms",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["task"] != "summary" {
		t.Errorf("Expected task summary, got %v", response["task"])
	}
	if response["final"] == "" {
		t.Error("Expected non-empty final output")
	}
	if chunks, _ := response["chunks"].(float64); chunks < 1 {
		t.Errorf("Expected at least one chunk, got %v", response["chunks"])
	}
	if processed, _ := response["processed"].(float64); processed < 1 {
		t.Errorf("Expected at least one processed chunk, got %v", response["processed"])
	}
}

func TestAnalyzeHandlerUnknownTaskDefaultsToSummary(t *testing.T) {
	handler := NewAnalyzeHandler(offlineEngine(), testPipelineConfig())
	router := analyzeRouter(handler)

	w := postJSON(router, "/api/analyze", AnalyzeRequest{
		Text: "The parties agree to binding arbitration in case of disputes.",
		Task: "nonsense-task",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["task"] != "summary" {
		t.Errorf("Expected unknown task to default to summary, got %v", response["task"])
	}
}

func TestAnalyzeHandlerChunkOverride(t *testing.T) {
	handler := NewAnalyzeHandler(offlineEngine(), testPipelineConfig())
	router := analyzeRouter(handler)

	// A small chunk size forces multiple windows over the same text.
	text := strings.Repeat("Clause about termination rights. ", 30)
	w := postJSON(router, "/api/analyze", AnalyzeRequest{
		Text:         text,
		Task:         "summary",
		ChunkSize:    200,
		ChunkOverlap: 20,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if chunks, _ := response["chunks"].(float64); chunks < 2 {
		t.Errorf("Expected multiple windows with small chunk size, got %v", response["chunks"])
	}
}
