package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"taskrun/internal/config"
)

func TestBuildTasksReferenceSet(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := DefaultConfig()

	tasks, err := buildTasks(cfg, &buf)
	if err != nil {
		t.Fatalf("buildTasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(tasks))
	}

	for _, tk := range tasks {
		if err := tk.Validate(); err != nil {
			t.Fatalf("task %s invalid: %v", tk.Name, err)
		}
	}

	if tasks[0].Name != "Printer" || tasks[0].Delay != time.Second || !tasks[0].Repeat.Repeats() {
		t.Fatalf("printer = %+v", tasks[0])
	}
	if tasks[1].Name != "Waiter" || tasks[1].Delay != 2*time.Second || tasks[1].Repeat.Repeats() {
		t.Fatalf("waiter = %+v", tasks[1])
	}
	if tasks[2].Name != "Calculator" || tasks[2].Delay != 3*time.Second {
		t.Fatalf("calculator = %+v", tasks[2])
	}

	// Variant wiring: the compute task writes its deterministic result.
	if err := tasks[2].Runner.Run(context.Background()); err != nil {
		t.Fatalf("compute run: %v", err)
	}
	if got := buf.String(); got != "ComputeTask: Sum = 5050\n" {
		t.Fatalf("compute output = %q", got)
	}
}

func TestBuildTasksRejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tc   config.TaskConfig
		want string
	}{
		{
			name: "unknown kind",
			tc:   config.TaskConfig{Name: "x", Kind: "dance"},
			want: "unknown kind",
		},
		{
			name: "bad delay",
			tc:   config.TaskConfig{Name: "x", Kind: "print", Delay: "fast"},
			want: "delay",
		},
		{
			name: "bad repeat",
			tc:   config.TaskConfig{Name: "x", Kind: "print", Repeat: "often"},
			want: "repeat",
		},
		{
			name: "bad wait duration",
			tc:   config.TaskConfig{Name: "x", Kind: "wait", Duration: "while"},
			want: "duration",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Tasks: []config.TaskConfig{tt.tc}}
			_, err := buildTasks(cfg, &bytes.Buffer{})
			if err == nil {
				t.Fatal("buildTasks = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("buildTasks = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	if err := config.Validate(DefaultConfig()); err != nil {
		t.Fatalf("Validate(DefaultConfig()) = %v", err)
	}
}

func TestAppRunReferenceLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the reference set for real time")
	}
	t.Parallel()

	a, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.OverrideStopAfter(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
