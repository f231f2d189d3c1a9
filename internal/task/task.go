package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskrun/internal/schedule"
)

// Runner is the unit of work a Task executes.
//
// Run executes synchronously on the calling worker and may block; the context
// is the run's lifetime, not the cooperative stop signal (a stop request never
// interrupts work already in progress).
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// Task couples a Runner with identity and timing configuration.
//
// Name is a logging identifier; uniqueness is not enforced.
// Delay is the initial wait before the first execution (0 = none).
// Repeat is the re-execution policy (once, fixed interval, or cron).
//
// A Task is read-only for the duration of a run. Mutating it after the
// executor has started is a precondition violation, not a supported case.
type Task struct {
	Name   string
	Delay  time.Duration
	Repeat schedule.Spec
	Runner Runner
}

// Validate rejects invalid timing and incomplete tasks.
// Invalid configuration is never silently clamped.
func (t Task) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return &ConfigError{Field: "name", Reason: "name is required"}
	}
	if t.Delay < 0 {
		return &ConfigError{Task: name, Field: "delay", Reason: "delay must be >= 0"}
	}
	if t.Repeat.Kind == schedule.KindInterval && t.Repeat.Every <= 0 {
		return &ConfigError{Task: name, Field: "repeat", Reason: "interval must be > 0"}
	}
	if t.Repeat.Kind == schedule.KindCron && t.Repeat.Cron == nil {
		return &ConfigError{Task: name, Field: "repeat", Reason: "cron schedule not compiled"}
	}
	if t.Runner == nil {
		return &ConfigError{Task: name, Field: "runner", Reason: "runner is required"}
	}
	return nil
}

// ConfigError reports invalid task configuration.
// It is returned at registration time, never during a run.
type ConfigError struct {
	Task   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("task config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("task %q config: %s: %s", e.Task, e.Field, e.Reason)
}
