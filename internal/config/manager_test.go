package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	p := writeFile(t, t.TempDir(), "cfg.json", `{
		"logging": {"level": "debug", "console": true},
		"run": {"stop_after": "6s", "grace": "10s"},
		"tasks": [
			{"name": "Printer", "kind": "print", "delay": "1s", "repeat": "500ms"},
			{"name": "Waiter", "kind": "wait", "delay": "2s", "duration": "2s"},
			{"name": "Calculator", "kind": "compute", "delay": "3s", "limit": 100}
		]
	}`)

	m := NewManager(p)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if len(cfg.Tasks) != 3 || cfg.Tasks[2].Limit != 100 {
		t.Fatalf("tasks = %+v", cfg.Tasks)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get() did not return the committed config")
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	p := writeFile(t, t.TempDir(), "cfg.yaml", `
logging:
  level: info
  console: true
run:
  stop_after: 6s
journal:
  driver: file
  path: ./journal
tasks:
  - name: Printer
    kind: print
    repeat: 500ms
    message: hi
`)

	cfg, err := NewManager(p).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Journal == nil || cfg.Journal.Driver != "file" {
		t.Fatalf("journal = %+v", cfg.Journal)
	}
	if cfg.Tasks[0].Message != "hi" {
		t.Fatalf("tasks = %+v", cfg.Tasks)
	}
}

func TestParseRejectsUnknownFieldsAndTrailingData(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	unknown := writeFile(t, dir, "unknown.json", `{"tasks": [], "typo_field": 1}`)
	if _, err := NewManager(unknown).Parse(); err == nil {
		t.Fatal("unknown field accepted")
	}

	trailing := writeFile(t, dir, "trailing.json", `{"tasks": []}{"tasks": []}`)
	if _, err := NewManager(trailing).Parse(); err == nil {
		t.Fatal("trailing data accepted")
	}

	unknownYAML := writeFile(t, dir, "unknown.yaml", "tasks: []\ntypo_field: 1\n")
	if _, err := NewManager(unknownYAML).Parse(); err == nil {
		t.Fatal("unknown yaml field accepted")
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()
	base := func() *Config {
		return &Config{
			Tasks: []TaskConfig{{Name: "a", Kind: "print"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"nil tasks", func(c *Config) { c.Tasks = nil }, "at least one task"},
		{"missing name", func(c *Config) { c.Tasks[0].Name = " " }, "name is required"},
		{"unknown kind", func(c *Config) { c.Tasks[0].Kind = "sing" }, "unknown kind"},
		{"negative delay", func(c *Config) { c.Tasks[0].Delay = "-1s" }, "must be >= 0"},
		{"bad repeat", func(c *Config) { c.Tasks[0].Repeat = "sometimes" }, "repeat"},
		{"bad grace", func(c *Config) { c.Run.Grace = "soon" }, "run.grace"},
		{"bad stop_after", func(c *Config) { c.Run.StopAfter = "-2s" }, "run.stop_after"},
		{
			"negative compute limit",
			func(c *Config) { c.Tasks[0].Kind = "compute"; c.Tasks[0].Limit = -1 },
			"limit",
		},
		{
			"bad wait duration",
			func(c *Config) { c.Tasks[0].Kind = "wait"; c.Tasks[0].Duration = "long" },
			"duration",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if err := Validate(base()); err != nil {
		t.Fatalf("valid base config rejected: %v", err)
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty = (%v, %v)", d, err)
	}
	if d, err := ParseDurationField("x", " 1500ms "); err != nil || d.Milliseconds() != 1500 {
		t.Fatalf("trimmed = (%v, %v)", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("negative accepted")
	}
	if _, err := ParseDurationField("x", "five"); err == nil {
		t.Fatal("garbage accepted")
	}
	if d, err := ParseDurationOrDefault("x", "", 42); err != nil || d != 42 {
		t.Fatalf("default = (%v, %v)", d, err)
	}
}

func TestPublishDropsOldestForSlowSubscriber(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	first := &Config{}
	second := &Config{Run: RunConfig{Watch: true}}
	m.publish(first)
	m.publish(second)

	got := <-ch
	if got != second {
		t.Fatal("publish did not replace the stale config")
	}
}
