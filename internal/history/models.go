package history

import (
	"time"

	"dwfx2pdf/internal/convert"
)

// Submitter identifies which entry point requested a conversion.
type Submitter string

const (
	SubmitterBatch  Submitter = "batch"
	SubmitterWatch  Submitter = "watch"
	SubmitterUpload Submitter = "upload"
)

// Entry is one recorded conversion.
type Entry struct {
	ID           int64
	Source       string
	Output       string
	Submitter    Submitter
	Success      bool
	Skipped      bool
	FailureKind  convert.FailureKind
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Summary aggregates the log for status output.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
}
