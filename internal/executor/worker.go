package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"taskrun/internal/eventbus"
	"taskrun/internal/task"
	logx "taskrun/pkg/logx"
)

// runWorker executes the full lifecycle of one task on its dedicated
// goroutine: start marker, initial delay, execute/repeat loop, end marker.
//
// The stop signal is consulted only at loop-continuation points. In
// particular the initial delay is never cut short and the first execution
// always happens, even when the stop was requested before Start.
func (s *Service) runWorker(ctx context.Context, t task.Task) {
	started := time.Now()
	s.sink.Line("[START] " + t.Name)
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeTaskStarted,
			Time: started,
			Data: TaskEvent{Name: t.Name, Started: started},
		})
	}

	s.inFlight.Add(1)
	runs, err := s.runLoop(ctx, t)
	s.inFlight.Add(-1)

	dur := time.Since(started)
	if err != nil {
		// Faults stay local to this worker; siblings never notice.
		s.sink.Line(fmt.Sprintf("[FAIL] %s: %v", t.Name, err))
	}
	s.sink.Line("[END] " + t.Name)

	o := Outcome{Name: t.Name, Started: started, Duration: dur, Runs: runs, Err: err}
	s.recordOutcome(o)

	ev := TaskEvent{Name: t.Name, Started: started, Duration: dur, Runs: runs}
	typ := eventbus.TypeTaskFinished
	if err != nil {
		ev.Error = err.Error()
		typ = eventbus.TypeTaskFailed
		s.log.Warn("task.failed",
			logx.String("task", t.Name),
			logx.Any("err", err),
			logx.Int("runs", runs),
			logx.Duration("dur", dur),
		)
	} else {
		s.log.Debug("task.finished",
			logx.String("task", t.Name),
			logx.Int("runs", runs),
			logx.Duration("dur", dur),
		)
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: typ, Data: ev})
	}
}

func (s *Service) runLoop(ctx context.Context, t task.Task) (runs int, err error) {
	if t.Delay > 0 {
		tmr := time.NewTimer(t.Delay)
		select {
		case <-ctx.Done():
			if !tmr.Stop() {
				<-tmr.C
			}
			return 0, ctx.Err()
		case <-tmr.C:
		}
	}

	// Fast repeating tasks would otherwise flood the debug log.
	lim := rate.NewLimiter(rate.Limit(s.cfg.TickLogPerSec), s.cfg.TickLogPerSec)

	for {
		err = s.execOnce(ctx, t)
		runs++
		if err != nil {
			return runs, err
		}
		if lim.Allow() {
			s.log.Debug("task.executed", logx.String("task", t.Name), logx.Int("run", runs))
		}
		if !t.Repeat.Repeats() {
			return runs, nil
		}
		if !s.waitNext(ctx, t) {
			return runs, nil
		}
	}
}

// waitNext sleeps until the task's next activation. It returns false when
// the loop must not re-enter: stop requested or run context expired.
func (s *Service) waitNext(ctx context.Context, t task.Task) bool {
	d := time.Until(t.Repeat.Next(time.Now()))
	if d < 0 {
		d = 0
	}
	tmr := time.NewTimer(d)
	defer tmr.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-s.stopCh:
		return false
	case <-tmr.C:
	}
	return !s.stopFlag.Load()
}

// execOnce traps panics so one bad task cannot crash the process or take
// sibling workers down with it.
func (s *Service) execOnce(ctx context.Context, t task.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.log.Error("task.panic",
				logx.String("task", t.Name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())),
			)
		}
	}()
	return t.Runner.Run(ctx)
}
