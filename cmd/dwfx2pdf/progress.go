package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"dwfx2pdf/internal/convert"
)

// batchProgress renders a live tracker while a batch drains. When stdout is
// not a terminal it stays inert, so piped runs see only the final table.
type batchProgress struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func newBatchProgress(total int) *batchProgress {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return &batchProgress{}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stdout)
	pw.SetTrackerLength(25)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetAutoStop(false)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Speed = false

	tracker := &progress.Tracker{
		Message: "Converting",
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)
	go pw.Render()

	return &batchProgress{writer: pw, tracker: tracker}
}

// Observe advances the tracker for one finished task. Failures are logged
// above the bar so they survive the redraw.
func (p *batchProgress) Observe(outcome convert.Outcome) {
	if p.tracker == nil {
		return
	}
	if !outcome.Success {
		p.writer.Log("failed: %s (%s)", filepath.Base(outcome.Source), outcome.FailureMessage())
	}
	p.tracker.Increment(1)
}

// Stop tears the bar down and waits for the final frame to flush, so the
// results table never interleaves with a redraw.
func (p *batchProgress) Stop() {
	if p.writer == nil {
		return
	}
	p.tracker.MarkAsDone()
	p.writer.Stop()
	for p.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
