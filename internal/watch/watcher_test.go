package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dwfx2pdf/internal/logging"
	"dwfx2pdf/internal/testsupport"
)

func TestWatcherReleasesDroppedFile(t *testing.T) {
	dir := t.TempDir()
	released := make(chan string, 4)

	w := NewWatcher(dir, 10*time.Millisecond, 2, func(path string) { released <- path }, logging.NewNop())
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drop.dwfx")
	testsupport.WriteFile(t, path, 512)

	select {
	case got := <-released:
		if got != path {
			t.Fatalf("released %q, want %q", got, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("file never released")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	released := make(chan string, 4)

	w := NewWatcher(dir, 10*time.Millisecond, 2, func(path string) { released <- path }, logging.NewNop())
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 128)
	testsupport.WriteFile(t, filepath.Join(dir, "archive.zip"), 128)

	select {
	case got := <-released:
		t.Fatalf("unexpected release: %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherMatchesExtensionCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	released := make(chan string, 4)

	w := NewWatcher(dir, 10*time.Millisecond, 2, func(path string) { released <- path }, logging.NewNop())
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "UPPER.DWFX")
	testsupport.WriteFile(t, path, 64)

	select {
	case got := <-released:
		if got != path {
			t.Fatalf("released %q, want %q", got, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("upper-case extension never released")
	}
}

func TestWatcherStartFailsForMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent"), 10*time.Millisecond, 2, nil, logging.NewNop())
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, 10*time.Millisecond, 2, nil, logging.NewNop())
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
	w.Stop()

	// Files dropped after Stop are never picked up.
	if err := os.WriteFile(filepath.Join(dir, "late.dwfx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
