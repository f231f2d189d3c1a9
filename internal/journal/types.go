package journal

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("journal disabled")

// Config configures the journal.
//
// Driver values:
//   - "file": dependency-free JSON Lines backend
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// TaskRecord is one worker outcome. Keep it compact and schema-stable.
type TaskRecord struct {
	RunID    string        `json:"run_id"`
	Name     string        `json:"name"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Runs     int           `json:"runs"`
	Error    string        `json:"error,omitempty"`
}

// RunRecord summarizes one whole run.
type RunRecord struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Tasks    int           `json:"tasks"`
	Failed   int           `json:"failed"`
}
