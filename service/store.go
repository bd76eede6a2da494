package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/config"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

// AnalysisStore is an in-memory store for document analysis runs. Results
// live only for the process lifetime; durable persistence is deliberately
// out of scope.
type AnalysisStore struct {
	analyses   map[string]*model.Analysis
	mu         sync.RWMutex
	maxResults int // maximum results to keep, 0 = unlimited
}

var (
	globalStore *AnalysisStore
	storeOnce   sync.Once
)

// InitAnalysisStore initializes the global analysis store with configuration
func InitAnalysisStore(cfg *config.StoreConfig) {
	storeOnce.Do(func() {
		maxResults := cfg.MaxResults
		if maxResults < 0 {
			maxResults = 0
		}
		globalStore = &AnalysisStore{
			analyses:   make(map[string]*model.Analysis),
			maxResults: maxResults,
		}
		slog.Info("analysis store initialized", "max_results", maxResults)
	})
}

// GetAnalysisStore returns the global analysis store
func GetAnalysisStore() *AnalysisStore {
	if globalStore == nil {
		// Fallback initialization with default settings
		globalStore = &AnalysisStore{
			analyses:   make(map[string]*model.Analysis),
			maxResults: 100,
		}
	}
	return globalStore
}

func (s *AnalysisStore) Save(analysis *model.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis.UpdatedAt = time.Now()
	s.analyses[analysis.ID] = analysis

	s.cleanupIfNeeded()
}

func (s *AnalysisStore) Get(id string) *model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyses[id]
}

// List returns all analyses ordered newest first.
func (s *AnalysisStore) List() []*model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *AnalysisStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, id)
}

func (s *AnalysisStore) UpdateStatus(id, status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[id]; ok {
		a.Status = status
		a.ErrorMsg = errMsg
		a.UpdatedAt = time.Now()
	}
}

// UpdateResult records a finished pipeline run. A result with an embedded
// error message still counts as completed when partial outputs survived;
// partial results are preferred over total failure.
func (s *AnalysisStore) UpdateResult(id string, result *summarizer.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[id]; ok {
		a.Pages = result.Pages
		a.Chunks = result.Chunks
		a.Processed = result.Processed
		a.Partial = result.Partial
		a.Final = result.Final
		a.ErrorMsg = result.ErrorMsg
		a.ElapsedMS = result.ElapsedMS
		if result.Processed == 0 && result.ErrorMsg != "" {
			a.Status = model.StatusFailed
		} else {
			a.Status = model.StatusCompleted
		}
		a.UpdatedAt = time.Now()
	}
}

// cleanupIfNeeded removes oldest analyses if store exceeds maxResults
// Must be called with lock held
func (s *AnalysisStore) cleanupIfNeeded() {
	if s.maxResults <= 0 {
		return // Unlimited
	}

	if len(s.analyses) <= s.maxResults {
		return
	}

	analyses := make([]*model.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		analyses = append(analyses, a)
	}
	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.Before(analyses[j].CreatedAt)
	})

	removeCount := len(analyses) - s.maxResults
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old analysis",
			"analysis_id", analyses[i].ID,
			"created_at", analyses[i].CreatedAt,
		)
		delete(s.analyses, analyses[i].ID)
	}
}

// Count returns the number of analyses in the store
func (s *AnalysisStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.analyses)
}
