package executor

import (
	"io"
	"time"
)

// Config controls the task executor.
//
// The executor dedicates one goroutine to every registered task for the whole
// run. That is a deliberate isolation choice: a blocking task can never delay
// an unrelated task's cadence. The cost is unbounded concurrency for
// unbounded task counts, which is acceptable for small, statically known
// sets; a bounded worker pool with a queue is the natural extension for
// large ones and is intentionally not implemented here.
type Config struct {
	// Out receives the serialized start/end/failure lines and all task
	// output. Defaults to stdout.
	Out io.Writer

	// HistorySize bounds the in-memory history ring (default 200).
	HistorySize int

	// TickLogPerSec caps per-iteration debug logs of fast repeating tasks.
	// 0 applies the default of 5/s per worker.
	TickLogPerSec int
}

// Outcome is the per-task result of a run.
//
// Faults stay local to their worker: a failed task marks its own Outcome and
// never aborts siblings.
type Outcome struct {
	Name     string
	Started  time.Time
	Duration time.Duration
	Runs     int
	Err      error
}

func (o Outcome) Failed() bool { return o.Err != nil }

// HistoryItem is a compact per-task record kept in the history ring.
type HistoryItem struct {
	Name     string
	Started  time.Time
	Duration time.Duration
	Runs     int
	Error    string
}

// TaskEvent is emitted on the event bus for task lifecycle events.
type TaskEvent struct {
	Name     string        `json:"name"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Runs     int           `json:"runs"`
	Error    string        `json:"error,omitempty"`
}

// RunEvent is emitted once when all workers have terminated.
type RunEvent struct {
	Tasks    int           `json:"tasks"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Snapshot is a lightweight view for diagnostics.
type Snapshot struct {
	Started  bool
	Stopping bool
	Tasks    int
	InFlight int

	Outcomes []Outcome
	History  []HistoryItem
}
