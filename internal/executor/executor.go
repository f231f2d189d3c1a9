package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"taskrun/internal/eventbus"
	"taskrun/internal/task"
	logx "taskrun/pkg/logx"
)

// Service runs a fixed set of tasks, one worker goroutine per task, until
// every worker reaches its terminal state.
//
// Lifecycle: Add tasks, then Start (or Run) exactly once. RequestStop flips a
// shared cooperative flag; repeating workers observe it at their loop
// boundary and exit, in-flight executions always finish.
type Service struct {
	log  logx.Logger
	bus  eventbus.Bus
	cfg  Config
	sink *Sink

	mu       sync.Mutex
	tasks    []task.Task
	started  bool
	startAt  time.Time
	outcomes []Outcome
	history  []HistoryItem

	inFlight atomic.Int32

	// stopFlag has single-writer-intent semantics: only the first
	// RequestStop matters. stopCh exists so workers sleeping out a long
	// interval wake promptly instead of draining the full timer.
	stopFlag atomic.Bool
	stopCh   chan struct{}

	wg   sync.WaitGroup
	done chan struct{}
}

func New(cfg Config, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	out := cfg.Out
	if out == nil {
		out = logx.Stdout()
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 200
	}
	if cfg.TickLogPerSec <= 0 {
		cfg.TickLogPerSec = 5
	}
	return &Service{
		log:    log,
		bus:    bus,
		cfg:    cfg,
		sink:   NewSink(out),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Sink returns the serialized output sink shared by all workers.
// Task variants that produce output should write through it.
func (s *Service) Sink() *Sink { return s.sink }

// Add registers a task. Registration is only valid before the run starts.
func (s *Service) Add(t task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrRunStarted
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// RequestStop sets the shared stop signal. It is idempotent, thread-safe and
// non-blocking, and may be called before the run starts: the signal is only
// read at loop-continuation points, so every task still executes at least
// once.
func (s *Service) RequestStop() {
	if s.stopFlag.CompareAndSwap(false, true) {
		close(s.stopCh)
		s.log.Info("stop requested")
	}
}

// Stopping reports whether a stop has been requested.
func (s *Service) Stopping() bool { return s.stopFlag.Load() }

// StopRequested returns a channel that is closed once a stop was requested.
func (s *Service) StopRequested() <-chan struct{} { return s.stopCh }

// Done returns a channel that is closed once every worker has terminated.
func (s *Service) Done() <-chan struct{} { return s.done }

// Start spawns one worker per registered task and returns immediately.
// It fails with ErrRunStarted on a second call.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrRunStarted
	}
	s.started = true
	s.startAt = time.Now()
	tasks := s.tasks
	s.mu.Unlock()

	s.log.Info("run started", logx.Int("tasks", len(tasks)))

	for _, t := range tasks {
		t := t
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runWorker(ctx, t)
		}()
	}

	go func() {
		s.wg.Wait()
		s.finish()
		close(s.done)
	}()
	return nil
}

// Wait blocks until every worker has terminated, or until ctx expires.
// On expiry it returns ErrJoinTimeout; the workers keep draining in the
// background (a task whose work never returns can hold its own worker
// forever, which is why callers get a bounded variant at all).
func (s *Service) Wait(ctx context.Context) ([]Outcome, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, ErrNotStarted
	}

	select {
	case <-s.done:
		return s.Outcomes(), nil
	case <-ctx.Done():
		return s.Outcomes(), ErrJoinTimeout
	}
}

// Run is the blocking form: Start then Wait.
func (s *Service) Run(ctx context.Context) ([]Outcome, error) {
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s.Wait(ctx)
}

// Outcomes returns a copy of the outcomes recorded so far.
func (s *Service) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Snapshot returns a point-in-time diagnostics view.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Started:  s.started,
		Stopping: s.stopFlag.Load(),
		Tasks:    len(s.tasks),
		InFlight: int(s.inFlight.Load()),
	}
	snap.Outcomes = make([]Outcome, len(s.outcomes))
	copy(snap.Outcomes, s.outcomes)
	snap.History = make([]HistoryItem, len(s.history))
	copy(snap.History, s.history)
	return snap
}

func (s *Service) recordOutcome(o Outcome) {
	item := HistoryItem{Name: o.Name, Started: o.Started, Duration: o.Duration, Runs: o.Runs}
	if o.Err != nil {
		item.Error = o.Err.Error()
	}

	s.mu.Lock()
	s.outcomes = append(s.outcomes, o)
	s.history = append(s.history, item)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.mu.Unlock()
}

func (s *Service) finish() {
	s.mu.Lock()
	dur := time.Since(s.startAt)
	failed := 0
	for _, o := range s.outcomes {
		if o.Err != nil {
			failed++
		}
	}
	total := len(s.outcomes)
	s.mu.Unlock()

	s.log.Info("run finished",
		logx.Int("tasks", total),
		logx.Int("failed", failed),
		logx.Duration("dur", dur),
	)
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeRunFinished,
			Data: RunEvent{Tasks: total, Failed: failed, Duration: dur},
		})
	}
}
