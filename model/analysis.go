package model

import (
	"time"
)

// Task selects which pair of prompt templates drives the analysis.
type Task string

const (
	TaskSummary             Task = "summary"
	TaskUnfavorableElements Task = "unfavorable_elements"
	TaskConflicts           Task = "conflicts"
)

// ParseTask maps a request-supplied task name onto a known Task.
// Unknown names fall back to TaskSummary; the UI sends free-form strings
// and we prefer a usable summary over a rejection.
func ParseTask(s string) Task {
	switch Task(s) {
	case TaskSummary, TaskUnfavorableElements, TaskConflicts:
		return Task(s)
	}
	return TaskSummary
}

// Message is one turn of a chat exchange sent to a model backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Analysis represents one document analysis run
type Analysis struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Task       Task      `json:"task"`
	Focus      string    `json:"focus,omitempty"`
	Status     string    `json:"status"` // pending, processing, completed, failed
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	Processed  int       `json:"processed"`
	Partial    []string  `json:"partial,omitempty"`
	Final      string    `json:"final,omitempty"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	ElapsedMS  int64     `json:"elapsed_ms,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Analysis status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
