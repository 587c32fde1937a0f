package jobs

import (
	"sync"
	"time"

	"github.com/sheetcast/sheetcast/internal/models"
)

// RunSummary is the user-visible record of one pipeline run.
type RunSummary struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Fetched    bool             `json:"fetched_sheet"`
	Due        int              `json:"due"`
	Published  int              `json:"published"`
	Failed     int              `json:"failed"`
	Outcomes   []models.Outcome `json:"outcomes,omitempty"`
}

const historyLimit = 50

// RunHistory keeps the most recent run summaries in memory for the status
// API. Safe for concurrent use.
type RunHistory struct {
	mu      sync.RWMutex
	entries []RunSummary
}

func NewRunHistory() *RunHistory {
	return &RunHistory{}
}

func (h *RunHistory) Record(summary RunSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, summary)
	if len(h.entries) > historyLimit {
		h.entries = h.entries[len(h.entries)-historyLimit:]
	}
}

// List returns the recorded summaries, most recent first.
func (h *RunHistory) List() []RunSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RunSummary, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}
