package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dwfx2pdf/internal/config"
	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/dispatch"
	"dwfx2pdf/internal/fileutil"
	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/logging"
	"dwfx2pdf/internal/testsupport"
)

func newDaemon(t *testing.T, cfg *config.Config) (*Daemon, *history.Store) {
	t.Helper()
	binary := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)
	pool, err := dispatch.NewPool(convert.NewCLI(convert.WithBinary(binary)), cfg.Convert.Workers)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	hist, err := history.OpenPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	d, err := New(cfg, pool, hist, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, hist
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestDaemonConvertsDroppedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watch.PollIntervalMs = 10
	cfg.Web.Bind = ""

	d, hist := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "drop.dwfx"), 256)

	output := filepath.Join(cfg.Paths.OutputDir, "drop.pdf")
	waitFor(t, 5*time.Second, func() bool {
		return fileutil.NonEmptyFile(output)
	})

	waitFor(t, 2*time.Second, func() bool {
		entries, err := hist.Recent(context.Background(), 10)
		return err == nil && len(entries) == 1 && entries[0].Submitter == history.SubmitterWatch
	})
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Web.Bind = ""

	first, _ := newDaemon(t, cfg)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	second, _ := newDaemon(t, cfg)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance acquired the lock")
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Web.Bind = ""

	d, _ := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()
	d.Stop()

	if d.Status().Running {
		t.Fatal("status still running after Stop")
	}
}

func TestDaemonRestartAfterStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Web.Bind = ""

	d, _ := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	d.Stop()
}
