package schedule

import (
	"testing"
	"time"
)

func TestParseVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		kind     Kind
		source   string
		duration time.Duration
	}{
		{name: "empty means once", raw: "", kind: KindOnce, source: "once"},
		{name: "explicit once", raw: "once", kind: KindOnce, source: "once"},
		{name: "cron", raw: "*/5 * * * *", kind: KindCron, source: "cron"},
		{name: "prefixed cron", raw: "cron:0 0 * * *", kind: KindCron, source: "cron"},
		{name: "descriptor", raw: "@hourly", kind: KindCron, source: "cron"},
		{name: "duration", raw: "10m", kind: KindInterval, source: "duration", duration: 10 * time.Minute},
		{name: "sub-second", raw: "500ms", kind: KindInterval, source: "duration", duration: 500 * time.Millisecond},
		{name: "prefixed interval", raw: "interval:45s", kind: KindInterval, source: "duration", duration: 45 * time.Second},
		{name: "every prefix", raw: "every:90s", kind: KindInterval, source: "duration", duration: 90 * time.Second},
		{name: "hhmm", raw: "01:30", kind: KindInterval, source: "hhmm", duration: 90 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Source != tt.source {
				t.Fatalf("Source = %s, want %s", got.Source, tt.source)
			}
			if tt.kind == KindInterval && got.Every != tt.duration {
				t.Fatalf("Every = %v, want %v", got.Every, tt.duration)
			}
			if tt.kind == KindCron && got.Cron == nil {
				t.Fatal("cron spec not compiled")
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"not-a-schedule",
		"-5s",
		"0s",
		"cron:",
		"cron:not a cron at all here",
		"interval:",
		"01:99",
	} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q): expected error", raw)
		}
	}
}

func TestNext(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 24, 12, 0, 30, 0, time.UTC)

	iv, err := Parse("500ms")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := iv.Next(now); !got.Equal(now.Add(500 * time.Millisecond)) {
		t.Fatalf("interval Next = %v", got)
	}

	cr, err := Parse("*/5 * * * *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := time.Date(2026, 8, 24, 12, 5, 0, 0, time.UTC)
	if got := cr.Next(now); !got.Equal(want) {
		t.Fatalf("cron Next = %v, want %v", got, want)
	}

	once, _ := Parse("")
	if !once.Next(now).IsZero() {
		t.Fatal("once Next should be zero")
	}
	if once.Repeats() {
		t.Fatal("once should not repeat")
	}
}
