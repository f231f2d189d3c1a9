package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind describes the normalized kind of a repeat-policy string.
//
// We intentionally keep this small: run once, a fixed interval, or a cron
// expression (robfig/cron).
type Kind int

const (
	KindOnce Kind = iota
	KindInterval
	KindCron
)

// Spec represents a parsed repeat policy.
//
// Supported forms:
//   - "" (empty): run once
//   - Interval duration: "500ms", "2h30m"
//   - Interval HH:MM: "00:50" (50 minutes), "02:30" (2 hours 30 minutes)
//   - Cron (crontab.guru-style): "*/5 * * * *", "55 * * * *", "@hourly", "@every 55m"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
//
// Cron expressions are validated (and compiled) at parse time so invalid
// schedules are rejected at registration, not mid-run.
type Spec struct {
	Kind   Kind
	Every  time.Duration
	Expr   string        // original cron expression (KindCron)
	Cron   cron.Schedule // compiled schedule (KindCron)
	Source string        // "once" | "cron" | "duration" | "hhmm"
}

// Repeats reports whether the policy re-executes after the first run.
func (s Spec) Repeats() bool { return s.Kind != KindOnce }

// Next returns the wall-clock time of the next activation after now.
// For KindOnce it returns the zero time.
func (s Spec) Next(now time.Time) time.Time {
	switch s.Kind {
	case KindInterval:
		return now.Add(s.Every)
	case KindCron:
		if s.Cron == nil {
			return time.Time{}
		}
		return s.Cron.Next(now)
	default:
		return time.Time{}
	}
}

func (s Spec) String() string {
	switch s.Kind {
	case KindInterval:
		return "every " + s.Every.String()
	case KindCron:
		return "cron " + s.Expr
	default:
		return "once"
	}
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// Standard 5-field crontab plus descriptors (@hourly, @every 55m, ...).
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Parse parses a repeat-policy string into a Spec.
// An empty string means "run once".
func Parse(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "once") || strings.EqualFold(s, "none") {
		return Spec{Kind: KindOnce, Source: "once"}, nil
	}

	// Prefixes (explicit)
	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return Spec{}, fmt.Errorf("cron expression required after 'cron:'")
		}
		return parseCron(expr)
	}
	if strings.HasPrefix(low, "interval:") {
		v := strings.TrimSpace(s[len("interval:"):])
		return parseIntervalSpec(v)
	}
	if strings.HasPrefix(low, "every:") {
		v := strings.TrimSpace(s[len("every:"):])
		return parseIntervalSpec(v)
	}

	// Heuristics:
	// - any whitespace or leading '@' => cron
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return parseCron(s)
	}

	// - HH:MM => interval duration
	if reHHMM.MatchString(s) {
		d, err := parseHHMMDuration(s)
		if err != nil {
			return Spec{}, err
		}
		return Spec{Kind: KindInterval, Every: d, Source: "hhmm"}, nil
	}

	// - Go duration => interval duration
	d, err := time.ParseDuration(s)
	if err == nil {
		if d <= 0 {
			return Spec{}, fmt.Errorf("interval must be > 0")
		}
		return Spec{Kind: KindInterval, Every: d, Source: "duration"}, nil
	}

	return Spec{}, fmt.Errorf(
		"invalid repeat policy %q (use cron like '*/5 * * * *', HH:MM like '02:30', or duration like '500ms')",
		raw,
	)
}

func parseCron(expr string) (Spec, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return Spec{Kind: KindCron, Expr: expr, Cron: sched, Source: "cron"}, nil
}

func parseIntervalSpec(v string) (Spec, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Spec{}, fmt.Errorf("interval required")
	}
	if reHHMM.MatchString(v) {
		d, err := parseHHMMDuration(v)
		if err != nil {
			return Spec{}, err
		}
		return Spec{Kind: KindInterval, Every: d, Source: "hhmm"}, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid interval %q (use HH:MM or Go duration like '55m'/'2h30m')", v)
	}
	if d <= 0 {
		return Spec{}, fmt.Errorf("interval must be > 0")
	}
	return Spec{Kind: KindInterval, Every: d, Source: "duration"}, nil
}

func parseHHMMDuration(v string) (time.Duration, error) {
	m := reHHMM.FindStringSubmatch(v)
	if len(m) != 3 {
		return 0, fmt.Errorf("invalid HH:MM %q", v)
	}
	// safe parse: hours up to 999, minutes 0..59
	var hh int
	for i := 0; i < len(m[1]); i++ {
		hh = hh*10 + int(m[1][i]-'0')
	}
	mm := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	if mm > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", v)
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}
