package main

import (
	"os"
	"testing"

	"github.com/mattn/go-isatty"

	"dwfx2pdf/internal/convert"
)

func TestBatchProgressInertWithoutTerminal(t *testing.T) {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		t.Skip("stdout is a terminal")
	}

	prog := newBatchProgress(3)
	if prog.tracker != nil {
		t.Fatal("expected inert progress when stdout is not a terminal")
	}
	prog.Observe(convert.Outcome{Source: "/in/a.dwfx", Success: true})
	prog.Observe(convert.Outcome{Source: "/in/b.dwfx"})
	prog.Stop()
}
