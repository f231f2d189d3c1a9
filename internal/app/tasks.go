package app

import (
	"fmt"
	"io"
	"strings"

	"taskrun/internal/config"
	"taskrun/internal/schedule"
	"taskrun/internal/task"
)

// buildTasks turns the declarative task set into Task values wired to the
// executor's serialized sink.
func buildTasks(cfg *config.Config, sink io.Writer) ([]task.Task, error) {
	tasks := make([]task.Task, 0, len(cfg.Tasks))
	for i, tc := range cfg.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)

		delay, err := config.ParseDurationField(field+".delay", tc.Delay)
		if err != nil {
			return nil, err
		}
		repeat, err := schedule.Parse(tc.Repeat)
		if err != nil {
			return nil, fmt.Errorf("%s (%s): repeat: %w", field, tc.Name, err)
		}

		var runner task.Runner
		switch strings.ToLower(strings.TrimSpace(tc.Kind)) {
		case "print":
			runner = task.NewPrint(tc.Message, sink)
		case "wait":
			d, err := config.ParseDurationField(field+".duration", tc.Duration)
			if err != nil {
				return nil, err
			}
			runner = task.NewWait(d, sink)
		case "compute":
			runner = task.NewCompute(tc.Limit, sink)
		default:
			return nil, fmt.Errorf("%s (%s): unknown kind %q", field, tc.Name, tc.Kind)
		}

		tasks = append(tasks, task.Task{
			Name:   tc.Name,
			Delay:  delay,
			Repeat: repeat,
			Runner: runner,
		})
	}
	return tasks, nil
}

// DefaultConfig is the built-in reference run, used when no config file is
// given: a repeating printer, a slow sleeper, a bounded computation, and a
// stop request at six seconds.
func DefaultConfig() *config.Config {
	return &config.Config{
		Logging: config.LoggingConfig{Level: "info", Console: true},
		Run: config.RunConfig{
			StopAfter: "6s",
			Grace:     "10s",
		},
		Tasks: []config.TaskConfig{
			{Name: "Printer", Kind: "print", Delay: "1s", Repeat: "500ms"},
			{Name: "Waiter", Kind: "wait", Delay: "2s", Duration: "2s"},
			{Name: "Calculator", Kind: "compute", Delay: "3s", Limit: 100},
		},
	}
}
