package watch

import (
	"os"
	"path/filepath"
	"testing"

	"dwfx2pdf/internal/testsupport"
)

func newReleaseRecorder() (func(string), *[]string) {
	var released []string
	return func(path string) { released = append(released, path) }, &released
}

func TestGateReleasesAfterThresholdPolls(t *testing.T) {
	release, released := newReleaseRecorder()
	gate := NewGate(2, release)

	path := filepath.Join(t.TempDir(), "steady.dwfx")
	testsupport.WriteFile(t, path, 128)
	gate.Arm(path)

	// First poll observes the size, the next two confirm it held still.
	gate.Poll()
	gate.Poll()
	if len(*released) != 0 {
		t.Fatalf("released too early: %v", *released)
	}
	gate.Poll()
	if len(*released) != 1 || (*released)[0] != path {
		t.Fatalf("released = %v, want exactly [%s]", *released, path)
	}
	if gate.Tracking() != 0 {
		t.Fatalf("record not removed after release: %d tracked", gate.Tracking())
	}

	// The record is gone; an identical extra poll must not re-release.
	gate.Poll()
	if len(*released) != 1 {
		t.Fatalf("path released twice: %v", *released)
	}
}

func TestGateNeverReleasesGrowingFile(t *testing.T) {
	release, released := newReleaseRecorder()
	gate := NewGate(2, release)

	path := filepath.Join(t.TempDir(), "growing.dwfx")
	size := int64(100)
	testsupport.WriteFile(t, path, size)
	gate.Arm(path)

	for i := 0; i < 10; i++ {
		gate.Poll()
		size += 50
		testsupport.WriteFile(t, path, size)
	}
	if len(*released) != 0 {
		t.Fatalf("growing file was released: %v", *released)
	}
	if gate.Tracking() != 1 {
		t.Fatalf("growing file lost from tracking: %d", gate.Tracking())
	}

	// Writes stop; threshold polls later it releases.
	gate.Poll()
	gate.Poll()
	gate.Poll()
	if len(*released) != 1 {
		t.Fatalf("settled file not released: %v", *released)
	}
}

func TestGateDiscardsDeletedPath(t *testing.T) {
	release, released := newReleaseRecorder()
	gate := NewGate(2, release)

	path := filepath.Join(t.TempDir(), "vanishing.dwfx")
	testsupport.WriteFile(t, path, 64)
	gate.Arm(path)
	gate.Poll()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	gate.Poll()

	if gate.Tracking() != 0 {
		t.Fatal("deleted path still tracked")
	}
	if len(*released) != 0 {
		t.Fatalf("deleted path was released: %v", *released)
	}
}

func TestGateZeroByteFileStillStabilizes(t *testing.T) {
	release, released := newReleaseRecorder()
	gate := NewGate(2, release)

	path := filepath.Join(t.TempDir(), "touched.dwfx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	gate.Arm(path)
	gate.Poll()
	gate.Poll()
	gate.Poll()

	// Stability is about size constancy, not size non-zero; the converter is
	// the one to reject empty input.
	if len(*released) != 1 {
		t.Fatalf("zero-byte file not released: %v", *released)
	}
}

func TestGateDuplicateArmDoesNotResetProgress(t *testing.T) {
	release, released := newReleaseRecorder()
	gate := NewGate(2, release)

	path := filepath.Join(t.TempDir(), "dup.dwfx")
	testsupport.WriteFile(t, path, 64)

	gate.Arm(path)
	gate.Poll()
	gate.Poll()

	// A coalesced or duplicated event mid-settle must not restart debounce.
	gate.Arm(path)
	gate.Poll()

	if len(*released) != 1 {
		t.Fatalf("duplicate event disturbed release: %v", *released)
	}
}

func TestGateRearmAfterReleaseStartsFresh(t *testing.T) {
	release, released := newReleaseRecorder()
	gate := NewGate(2, release)

	path := filepath.Join(t.TempDir(), "rewritten.dwfx")
	testsupport.WriteFile(t, path, 64)
	gate.Arm(path)
	gate.Poll()
	gate.Poll()
	gate.Poll()
	if len(*released) != 1 {
		t.Fatalf("first release missing: %v", *released)
	}

	// File rewritten later: tracking restarts from zero and releases again.
	testsupport.WriteFile(t, path, 96)
	gate.Arm(path)
	gate.Poll()
	if len(*released) != 1 {
		t.Fatal("released before new contents settled")
	}
	gate.Poll()
	gate.Poll()
	if len(*released) != 2 {
		t.Fatalf("rewritten file not released again: %v", *released)
	}
}
