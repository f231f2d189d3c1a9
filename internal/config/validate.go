package config

import (
	"fmt"
	"strings"

	"taskrun/internal/schedule"
)

var knownKinds = map[string]bool{
	"print":   true,
	"wait":    true,
	"compute": true,
}

// Validate rejects configs that could not produce a valid run.
//
// Timing errors (negative delay, bad repeat policy) are rejected here, never
// clamped: a config that says "-1s" is a mistake, not a request for zero.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if _, err := ParseDurationField("run.stop_after", cfg.Run.StopAfter); err != nil {
		return err
	}
	if _, err := ParseDurationField("run.grace", cfg.Run.Grace); err != nil {
		return err
	}
	if cfg.Journal != nil {
		if _, err := ParseDurationField("journal.busy_timeout", cfg.Journal.BusyTimeout); err != nil {
			return err
		}
	}

	if len(cfg.Tasks) == 0 {
		return fmt.Errorf("tasks: at least one task is required")
	}
	for i, tc := range cfg.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(tc.Name) == "" {
			return fmt.Errorf("%s: name is required", field)
		}
		kind := strings.ToLower(strings.TrimSpace(tc.Kind))
		if !knownKinds[kind] {
			return fmt.Errorf("%s (%s): unknown kind %q (use print|wait|compute)", field, tc.Name, tc.Kind)
		}
		if _, err := ParseDurationField(field+".delay", tc.Delay); err != nil {
			return err
		}
		if _, err := schedule.Parse(tc.Repeat); err != nil {
			return fmt.Errorf("%s (%s): repeat: %w", field, tc.Name, err)
		}
		switch kind {
		case "wait":
			if _, err := ParseDurationField(field+".duration", tc.Duration); err != nil {
				return err
			}
		case "compute":
			if tc.Limit < 0 {
				return fmt.Errorf("%s (%s): limit must be >= 0", field, tc.Name)
			}
		}
	}
	return nil
}
