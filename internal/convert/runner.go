package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"dwfx2pdf/internal/fileutil"
)

var commandContext = exec.CommandContext

// Diagnostic output captured from a failing converter is truncated to this
// many bytes before it lands in an Outcome.
const maxDiagnosticLen = 2048

// Homebrew installs libgxps keg-only on some systems, so xpstopdf is not
// always on PATH even when installed.
var kegOnlyFallbacks = []string{
	"/opt/homebrew/opt/libgxps/bin/",
	"/usr/local/opt/libgxps/bin/",
}

// Runner executes conversion tasks.
type Runner interface {
	Execute(ctx context.Context, task Task) Outcome
}

// Option configures the CLI runner.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the xpstopdf command-line converter.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI runner using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "xpstopdf"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Execute runs a single task to completion and classifies the result.
//
// With Overwrite unset and the output already present the converter is never
// invoked and a skipped success is returned, making re-runs idempotent.
func (c *CLI) Execute(ctx context.Context, task Task) Outcome {
	start := time.Now()

	if !task.Overwrite {
		if _, err := os.Stat(task.OutputPath); err == nil {
			return successOutcome(task, true, time.Since(start))
		}
	}

	if _, err := os.Stat(task.InputPath); err != nil {
		return failureOutcome(task, newError(KindIOError, "input not readable", err), time.Since(start))
	}

	binary, err := c.resolveBinary()
	if err != nil {
		return failureOutcome(task, newError(KindConverterNotFound, installHint(c.binary), err), time.Since(start))
	}

	if convErr := c.runWithRetry(ctx, binary, task); convErr != nil {
		removePartialOutput(task.OutputPath)
		return failureOutcome(task, convErr, time.Since(start))
	}

	if !fileutil.NonEmptyFile(task.OutputPath) {
		removePartialOutput(task.OutputPath)
		return failureOutcome(task, newError(KindEmptyOutput, "converter exited 0 but produced no output", nil), time.Since(start))
	}

	return successOutcome(task, false, time.Since(start))
}

// runWithRetry invokes the converter directly and, when that attempt crashes,
// once more through a temporary copy carrying an extra .xps suffix. DWFX is a
// zip container nearly identical to XPS and some libgxps builds refuse the
// unfamiliar extension.
func (c *CLI) runWithRetry(ctx context.Context, binary string, task Task) *Error {
	firstErr := runOnce(ctx, binary, task.InputPath, task.OutputPath)
	if firstErr == nil {
		return nil
	}
	if firstErr.Kind != KindConverterCrashed {
		return firstErr
	}

	tmpXPS := task.InputPath + ".xps"
	if err := fileutil.CopyFile(task.InputPath, tmpXPS); err != nil {
		return firstErr
	}
	defer func() {
		_ = os.Remove(tmpXPS)
	}()

	secondErr := runOnce(ctx, binary, tmpXPS, task.OutputPath)
	if secondErr == nil {
		return nil
	}
	combined := fmt.Sprintf("direct attempt: %s; .xps retry: %s", firstErr.Message, secondErr.Message)
	return newError(KindConverterCrashed, truncateDiagnostic(combined), secondErr.Wrapped)
}

func runOnce(ctx context.Context, binary, inputPath, outputPath string) *Error {
	cmd := commandContext(ctx, binary, inputPath, outputPath) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		diagnostic := truncateDiagnostic(strings.TrimSpace(string(output)))
		if diagnostic == "" {
			diagnostic = exitErr.String()
		}
		return newError(KindConverterCrashed, diagnostic, err)
	case errors.Is(err, exec.ErrNotFound):
		return newError(KindConverterNotFound, "", err)
	default:
		return newError(KindIOError, "start converter", err)
	}
}

func (c *CLI) resolveBinary() (string, error) {
	return LookupConverter(c.binary)
}

// LookupConverter resolves a converter binary the way Execute does: explicit
// paths are checked directly, bare names on PATH and then in the Homebrew
// keg-only locations.
func LookupConverter(binary string) (string, error) {
	if strings.ContainsRune(binary, os.PathSeparator) {
		if _, err := os.Stat(binary); err != nil {
			return "", err
		}
		return binary, nil
	}
	if found, err := exec.LookPath(binary); err == nil {
		return found, nil
	}
	for _, prefix := range kegOnlyFallbacks {
		candidate := prefix + binary
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found on PATH", binary)
}

func installHint(binary string) string {
	return fmt.Sprintf("missing %s; install libgxps (e.g. brew install libgxps or apt install libgxps-utils)", binary)
}

func removePartialOutput(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}

func truncateDiagnostic(text string) string {
	if len(text) <= maxDiagnosticLen {
		return text
	}
	return text[:maxDiagnosticLen] + "... (truncated)"
}

var _ Runner = (*CLI)(nil)
