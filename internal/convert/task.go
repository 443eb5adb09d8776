package convert

import (
	"path/filepath"
	"strings"
	"time"
)

// InputExtension is the recognized source extension, matched case-insensitively.
const InputExtension = ".dwfx"

// Task describes one unit of conversion work. Fields are fixed at creation;
// tasks share no state with each other.
type Task struct {
	InputPath  string
	OutputPath string
	Overwrite  bool
}

// NewTask builds a task for inputPath whose PDF lands in outputDir under the
// same base name.
func NewTask(inputPath, outputDir string, overwrite bool) Task {
	return Task{
		InputPath:  inputPath,
		OutputPath: filepath.Join(outputDir, OutputName(inputPath)),
		Overwrite:  overwrite,
	}
}

// OutputName derives the PDF file name for an input path: same base name,
// extension swapped for .pdf.
func OutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem + ".pdf"
}

// HasInputExtension reports whether path ends in the recognized source
// extension, ignoring case.
func HasInputExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), InputExtension)
}

// Outcome is the immutable record produced by executing one task.
type Outcome struct {
	Source   string
	Success  bool
	Skipped  bool
	Output   string
	Err      *Error
	Duration time.Duration
}

// FailureMessage returns the classified error text, or "" on success.
func (o Outcome) FailureMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

func successOutcome(task Task, skipped bool, elapsed time.Duration) Outcome {
	return Outcome{
		Source:   task.InputPath,
		Success:  true,
		Skipped:  skipped,
		Output:   task.OutputPath,
		Duration: elapsed,
	}
}

func failureOutcome(task Task, err *Error, elapsed time.Duration) Outcome {
	return Outcome{
		Source:   task.InputPath,
		Err:      err,
		Duration: elapsed,
	}
}

// InternalFailure wraps an unexpected worker fault into an Outcome so pool
// bugs never abort sibling tasks.
func InternalFailure(task Task, err error) Outcome {
	return failureOutcome(task, newError(KindInternalError, "", err), 0)
}
