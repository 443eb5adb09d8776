package watch

import (
	"os"
	"time"
)

// DefaultStabilityThreshold is the number of consecutive unchanged-size polls
// required before a file is released for conversion.
const DefaultStabilityThreshold = 2

// record tracks one path while it settles. Records are owned exclusively by
// the Gate and touched only from its poll loop.
type record struct {
	lastSize    int64
	stableCount int
	firstSeen   time.Time
}

// Gate is the debounce state machine between filesystem events and the
// dispatcher. It is not safe for concurrent use; the Watcher serializes every
// Arm and Poll call onto a single goroutine.
type Gate struct {
	threshold int
	records   map[string]*record
	release   func(path string)
	now       func() time.Time
}

// NewGate constructs a gate that hands stable paths to release. The release
// callback runs on the polling goroutine and must not block.
func NewGate(threshold int, release func(path string)) *Gate {
	if threshold < 1 {
		threshold = DefaultStabilityThreshold
	}
	return &Gate{
		threshold: threshold,
		records:   make(map[string]*record),
		release:   release,
		now:       time.Now,
	}
}

// Arm starts tracking a path, or re-arms an existing record. Event identity
// is never trusted: a duplicate event for a tracked path changes nothing,
// because the size comparison in Poll is what detects ongoing writes.
func (g *Gate) Arm(path string) {
	if _, exists := g.records[path]; exists {
		return
	}
	g.records[path] = &record{lastSize: -1, firstSeen: g.now()}
}

// Poll re-stats every tracked path once. Vanished paths are discarded
// silently (expected under concurrent moves and deletes); paths whose size
// held still for the threshold number of polls are released exactly once and
// forgotten, so a later rewrite starts the debounce from zero.
func (g *Gate) Poll() {
	for path, rec := range g.records {
		info, err := os.Stat(path)
		if err != nil {
			delete(g.records, path)
			continue
		}

		size := info.Size()
		if size != rec.lastSize {
			rec.lastSize = size
			rec.stableCount = 0
			continue
		}

		rec.stableCount++
		if rec.stableCount >= g.threshold {
			delete(g.records, path)
			if g.release != nil {
				g.release(path)
			}
		}
	}
}

// Tracking returns the number of paths currently settling.
func (g *Gate) Tracking() int {
	return len(g.records)
}
