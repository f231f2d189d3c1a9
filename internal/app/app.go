package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"

	"taskrun/internal/config"
	"taskrun/internal/eventbus"
	"taskrun/internal/executor"
	"taskrun/internal/journal"
	logx "taskrun/pkg/logx"
)

// App wires config, logging, the event bus, the journal and the executor,
// and drives one run end to end: start, optional stop timer, signal relay,
// bounded-grace join, summary.
type App struct {
	cfg    *config.Config
	cfgMgr *config.Manager

	logSvc *logx.Service
	log    logx.Logger

	bus   eventbus.Bus
	store journal.Store
	exec  *executor.Service

	runID string
}

// New loads and validates the config file at path and builds the app.
// An empty path uses the built-in reference task set.
func New(path string) (*App, error) {
	var (
		cfg    *config.Config
		cfgMgr *config.Manager
	)
	if path == "" {
		cfg = DefaultConfig()
	} else {
		cfgMgr = config.NewManager(path)
		var err error
		cfg, err = cfgMgr.Load()
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return build(cfg, cfgMgr)
}

func build(cfg *config.Config, cfgMgr *config.Manager) (*App, error) {
	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	bus := eventbus.New()

	var store journal.Store
	if cfg.Journal != nil {
		busy, err := config.ParseDurationField("journal.busy_timeout", cfg.Journal.BusyTimeout)
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		store, err = journal.Open(journal.Config{
			Driver:      cfg.Journal.Driver,
			Path:        cfg.Journal.Path,
			BusyTimeout: busy,
		}, log.With(logx.String("comp", "journal")))
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
	}

	exec := executor.New(executor.Config{
		HistorySize: cfg.Run.HistorySize,
	}, log.With(logx.String("comp", "executor")), bus)

	a := &App{
		cfg:    cfg,
		cfgMgr: cfgMgr,
		logSvc: logSvc,
		log:    log,
		bus:    bus,
		store:  store,
		exec:   exec,
		runID:  uuid.NewString(),
	}

	tasks, err := buildTasks(cfg, exec.Sink())
	if err != nil {
		a.close()
		return nil, err
	}
	for _, t := range tasks {
		if err := exec.Add(t); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

// OverrideStopAfter replaces the configured stop timer (CLI flag support).
// Must be called before Run.
func (a *App) OverrideStopAfter(d time.Duration) {
	if d > 0 {
		a.cfg.Run.StopAfter = d.String()
	}
}

// Run executes the whole lifecycle and blocks until the run is over.
//
// ctx carries the process's signal lifetime: cancellation is relayed as a
// cooperative stop request, never as a hard kill. After a stop the join is
// bounded by run.grace; if a task's work never returns, Run reports the
// timeout and leaves the stuck worker behind.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	started := time.Now()
	a.log.Info("starting",
		logx.String("run_id", a.runID),
		logx.Int("tasks", len(a.cfg.Tasks)),
	)

	grace, err := config.ParseDurationOrDefault("run.grace", a.cfg.Run.Grace, 10*time.Second)
	if err != nil {
		return err
	}
	stopAfter, err := config.ParseDurationField("run.stop_after", a.cfg.Run.StopAfter)
	if err != nil {
		return err
	}

	// Journal writer: consumes lifecycle events off the bus.
	events, unsub := a.bus.Subscribe(64)
	var jwg sync.WaitGroup
	if a.store != nil {
		jwg.Add(1)
		go func() {
			defer jwg.Done()
			a.journalWorker(events)
		}()
	}

	// Optional config hot-reload (logging only; the task set is fixed per run).
	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	if a.cfg.Run.Watch && a.cfgMgr != nil {
		a.startWatch(watchCtx)
	}

	// The run context is NOT the signal context: a signal requests a
	// cooperative stop, and in-flight work is allowed to finish within the
	// grace window.
	joinCtx, joinCancel := context.WithCancel(context.Background())
	defer joinCancel()

	if err := a.exec.Start(joinCtx); err != nil {
		return err
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	if stopAfter > 0 {
		tmr := time.AfterFunc(stopAfter, a.exec.RequestStop)
		defer tmr.Stop()
	}

	// Relay a signal (ctx) or any stop request into the grace countdown.
	relayDone := make(chan struct{})
	defer close(relayDone)
	go func() {
		select {
		case <-ctx.Done():
			a.exec.RequestStop()
		case <-a.exec.StopRequested():
		case <-a.exec.Done():
			return
		case <-relayDone:
			return
		}
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
		tmr := time.NewTimer(grace)
		defer tmr.Stop()
		select {
		case <-tmr.C:
			joinCancel()
		case <-a.exec.Done():
		case <-relayDone:
		}
	}()

	outcomes, waitErr := a.exec.Wait(joinCtx)

	// Drain the journal before summarizing.
	unsub()
	jwg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	if a.store != nil {
		jctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := a.store.AppendRun(jctx, journal.RunRecord{
			RunID:    a.runID,
			Started:  started,
			Duration: time.Since(started),
			Tasks:    len(outcomes),
			Failed:   failed,
		})
		cancel()
		if err != nil {
			a.log.Warn("journal run append failed", logx.Any("err", err))
		}
	}

	if waitErr != nil {
		snap := a.exec.Snapshot()
		a.log.Error("shutdown grace expired; workers still running",
			logx.Int("in_flight", snap.InFlight),
			logx.Duration("grace", grace),
		)
		return waitErr
	}

	a.log.Info("scheduler stopped gracefully",
		logx.String("run_id", a.runID),
		logx.Int("tasks", len(outcomes)),
		logx.Int("failed", failed),
		logx.Duration("dur", time.Since(started)),
	)
	return nil
}

func (a *App) startWatch(ctx context.Context) {
	a.cfgMgr.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgMgr.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return config.Validate(cfg)
	})
	go func() { _ = a.cfgMgr.Watch(ctx) }()

	sub := a.cfgMgr.Subscribe(4)
	go func() {
		defer a.cfgMgr.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-sub:
				if !ok || cfg == nil {
					return
				}
				a.logSvc.Apply(logx.Config{
					Level:   cfg.Logging.Level,
					Console: cfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: cfg.Logging.File.Enabled,
						Path:    cfg.Logging.File.Path,
					},
				})
				a.log.Info("logging config applied; task set changes take effect on next run")
			}
		}
	}()
}

func (a *App) journalWorker(events <-chan eventbus.Event) {
	for ev := range events {
		te, ok := ev.Data.(executor.TaskEvent)
		if !ok {
			continue
		}
		if ev.Type != eventbus.TypeTaskFinished && ev.Type != eventbus.TypeTaskFailed {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := a.store.AppendTask(ctx, journal.TaskRecord{
			RunID:    a.runID,
			Name:     te.Name,
			Started:  te.Started,
			Duration: te.Duration,
			Runs:     te.Runs,
			Error:    te.Error,
		})
		cancel()
		if err != nil {
			a.log.Warn("journal task append failed",
				logx.String("task", te.Name),
				logx.Any("err", err),
			)
		}
	}
}

func (a *App) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	if a.logSvc != nil {
		_ = a.logSvc.Close()
	}
}
