package config

// Config is the whole runtime configuration: logging, run behavior, the
// optional journal, and the task set for the run.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Logging LoggingConfig  `json:"logging"`
	Run     RunConfig      `json:"run"`
	Journal *JournalConfig `json:"journal,omitempty"`
	Tasks   []TaskConfig   `json:"tasks"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// RunConfig controls the run lifecycle.
//
// Defaults (when fields are omitted/zero):
//   - stop_after: "" (run until signal or natural completion)
//   - grace: "10s"
//   - history_size: 200
type RunConfig struct {
	// StopAfter arms a timer that requests a cooperative stop.
	StopAfter string `json:"stop_after,omitempty"`

	// Grace bounds the join after a stop was requested. When it expires the
	// process reports which workers were still running and exits.
	Grace string `json:"grace,omitempty"`

	// Watch enables config hot-reload for the logging section. The task set
	// is fixed once a run starts; a changed set is validated and takes
	// effect on the next start.
	Watch bool `json:"watch,omitempty"`

	HistorySize int `json:"history_size,omitempty"`
}

// JournalConfig controls the optional persistence layer.
//
// Example:
//
//	"journal": { "driver": "file", "path": "./taskrun_journal" }
type JournalConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// TaskConfig declares one task of the run.
//
// Kind selects the variant:
//   - "print":   writes Message every execution
//   - "wait":    blocks for Duration
//   - "compute": sums 1..Limit
//
// Repeat is empty (run once), a duration/HH:MM interval, or a cron
// expression.
type TaskConfig struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Delay  string `json:"delay,omitempty"`
	Repeat string `json:"repeat,omitempty"`

	Message  string `json:"message,omitempty"`  // print
	Duration string `json:"duration,omitempty"` // wait
	Limit    int    `json:"limit,omitempty"`    // compute
}
