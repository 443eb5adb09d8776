package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"dwfx2pdf/internal/config"
	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/dispatch"
	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/logging"
	"dwfx2pdf/internal/notifications"
	"dwfx2pdf/internal/results"
	"dwfx2pdf/internal/staging"
	"dwfx2pdf/internal/watch"
	"dwfx2pdf/internal/webui"
)

const staleUploadAge = 24 * time.Hour

// Daemon runs the watch loop and upload server over a shared conversion pool.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *dispatch.Pool
	hist     *history.Store
	notifier notifications.Service

	watcher *watch.Watcher
	web     *http.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status reports daemon runtime information.
type Status struct {
	Running       bool
	WatchDir      string
	OutputDir     string
	Workers       int
	WebBind       string
	LockFilePath  string
	HistoryDBPath string
}

// New constructs a daemon with initialized dependencies. The history store
// and notifier are optional.
func New(cfg *config.Config, pool *dispatch.Pool, hist *history.Store, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || pool == nil {
		return nil, errors.New("daemon requires config and pool")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "dwfx2pdfd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		pool:     pool,
		hist:     hist,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, sweeps stale uploads, and launches the
// watcher and, when configured, the upload server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dwfx2pdf daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	staging.CleanStale(d.cfg.Paths.UploadDir, staleUploadAge, d.logger)

	interval := time.Duration(d.cfg.Watch.PollIntervalMs) * time.Millisecond
	d.watcher = watch.NewWatcher(
		d.cfg.Paths.InputDir,
		interval,
		d.cfg.Watch.StabilityThreshold,
		d.convertReleased,
		d.logger,
	)
	if err := d.watcher.Start(); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		return fmt.Errorf("start watcher: %w", err)
	}

	if bind := d.cfg.Web.Bind; bind != "" {
		d.startWebServer(bind)
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("watch_dir", d.cfg.Paths.InputDir),
		logging.String("lock", d.lockPath))
	if err := d.notifier.NotifyWatchStarted(d.ctx, d.cfg.Paths.InputDir); err != nil {
		d.logger.Warn("watch notification failed", logging.Error(err))
	}
	return nil
}

// convertReleased is the watcher release callback. It must return quickly, so
// the conversion itself runs on a tracked goroutine.
func (d *Daemon) convertReleased(path string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		task := convert.NewTask(path, d.cfg.Paths.OutputDir, d.cfg.Convert.Overwrite)
		outcome := d.pool.Submit(d.ctx, task)
		d.recordOutcome(outcome)

		switch {
		case outcome.Skipped:
			d.logger.Info("conversion skipped",
				logging.String(logging.FieldSource, outcome.Source),
				logging.String(logging.FieldOutput, outcome.Output))
		case outcome.Success:
			d.logger.Info("conversion complete",
				logging.String(logging.FieldSource, outcome.Source),
				logging.String(logging.FieldOutput, outcome.Output),
				logging.Duration("elapsed", outcome.Duration))
		default:
			d.logger.Error("conversion failed",
				logging.String(logging.FieldSource, outcome.Source),
				logging.Error(outcome.Err))
			if err := d.notifier.NotifyConversionFailed(d.ctx, outcome.Source, outcome.Err); err != nil {
				d.logger.Warn("failure notification failed", logging.Error(err))
			}
		}
	}()
}

func (d *Daemon) recordOutcome(outcome convert.Outcome) {
	if d.hist == nil {
		return
	}
	if _, err := d.hist.Record(d.ctx, history.SubmitterWatch, outcome); err != nil {
		d.logger.Warn("record watch outcome", logging.Error(err))
	}
}

func (d *Daemon) startWebServer(bind string) {
	outputs := results.NewStore(d.cfg.Paths.OutputDir)
	handler := webui.NewServer(d.pool, d.cfg, outputs, d.hist, d.logger).Handler()
	d.web = &http.Server{
		Addr:              bind,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.logger.Info("upload server listening", logging.String("bind", bind))
		if err := d.web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("upload server failed", logging.Error(err))
		}
	}()
}

// Stop halts the watcher and upload server, waits for in-flight conversions
// to finish, and releases the daemon lock. It is safe to call more than once.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.running.Store(false)

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.web != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.web.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("upload server shutdown", logging.Error(err))
		}
		cancel()
	}

	// In-flight conversions drain before the lock is released; the pool never
	// kills a running converter.
	d.wg.Wait()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("daemon stopped")
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		WatchDir:     d.cfg.Paths.InputDir,
		OutputDir:    d.cfg.Paths.OutputDir,
		Workers:      d.pool.Workers(),
		WebBind:      d.cfg.Web.Bind,
		LockFilePath: d.lockPath,
	}
	if d.hist != nil {
		status.HistoryDBPath = d.hist.Path()
	}
	return status
}
