package task

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"taskrun/internal/schedule"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	noop := RunnerFunc(func(ctx context.Context) error { return nil })
	interval, err := schedule.Parse("1s")
	if err != nil {
		t.Fatalf("schedule.Parse: %v", err)
	}

	tests := []struct {
		name    string
		task    Task
		wantErr string
	}{
		{
			name: "valid once",
			task: Task{Name: "a", Runner: noop},
		},
		{
			name: "valid repeating with delay",
			task: Task{Name: "a", Delay: time.Second, Repeat: interval, Runner: noop},
		},
		{
			name:    "missing name",
			task:    Task{Runner: noop},
			wantErr: "name",
		},
		{
			name:    "blank name",
			task:    Task{Name: "   ", Runner: noop},
			wantErr: "name",
		},
		{
			name:    "negative delay",
			task:    Task{Name: "a", Delay: -time.Second, Runner: noop},
			wantErr: "delay",
		},
		{
			name:    "zero interval",
			task:    Task{Name: "a", Repeat: schedule.Spec{Kind: schedule.KindInterval}, Runner: noop},
			wantErr: "interval",
		},
		{
			name:    "cron without compiled schedule",
			task:    Task{Name: "a", Repeat: schedule.Spec{Kind: schedule.KindCron}, Runner: noop},
			wantErr: "cron",
		},
		{
			name:    "missing runner",
			task:    Task{Name: "a"},
			wantErr: "runner",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := NewPrint("custom message", &buf)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := buf.String(); got != "PrintTask: custom message\n" {
		t.Fatalf("output = %q", got)
	}

	buf.Reset()
	if err := NewPrint("", &buf).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := buf.String(); got != "PrintTask: Hello World\n" {
		t.Fatalf("default output = %q", got)
	}
}

func TestWaitBlocksForDuration(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	w := NewWait(30*time.Millisecond, &buf)

	begin := time.Now()
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if took := time.Since(begin); took < 30*time.Millisecond {
		t.Fatalf("returned after %v, want >= 30ms", took)
	}
	if got := buf.String(); got != "WaitTask: Sleeping for 30ms\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	w := NewWait(time.Minute, &bytes.Buffer{})
	begin := time.Now()
	err := w.Run(ctx)
	if err == nil {
		t.Fatal("Run = nil, want context error")
	}
	if took := time.Since(begin); took > time.Second {
		t.Fatalf("cancellation took %v", took)
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := NewCompute(100, &buf)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.Sum(); got != 5050 {
		t.Fatalf("Sum() = %d, want 5050", got)
	}
	if got := buf.String(); got != "ComputeTask: Sum = 5050\n" {
		t.Fatalf("output = %q", got)
	}

	if err := NewCompute(0, &bytes.Buffer{}).Run(context.Background()); err != nil {
		t.Fatalf("Run(limit=0): %v", err)
	}
}
