package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Canned converter stub behaviours. Each script receives the conventional
// xpstopdf arguments: $1 input, $2 output.
const (
	// ConverterCopy succeeds by copying input to output.
	ConverterCopy = "#!/bin/sh\ncp \"$1\" \"$2\"\nexit 0\n"
	// ConverterCrash exits non-zero with a diagnostic on stderr.
	ConverterCrash = "#!/bin/sh\necho \"render failed: corrupt page tree\" >&2\nexit 3\n"
	// ConverterPartialCrash writes a partial output before failing.
	ConverterPartialCrash = "#!/bin/sh\necho partial > \"$2\"\necho \"render failed midway\" >&2\nexit 1\n"
	// ConverterEmptyOutput exits zero without writing usable output.
	ConverterEmptyOutput = "#!/bin/sh\n: > \"$2\"\nexit 0\n"
	// ConverterXPSOnly fails unless invoked through an .xps-suffixed input,
	// mimicking extension-picky libgxps builds.
	ConverterXPSOnly = "#!/bin/sh\ncase \"$1\" in\n*.xps) cp \"$1\" \"$2\"; exit 0 ;;\n*) echo \"unsupported extension\" >&2; exit 1 ;;\nesac\n"
)

// WriteConverterStub writes an executable stub script and returns its path.
func WriteConverterStub(t testing.TB, script string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "xpstopdf")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write converter stub: %v", err)
	}
	return path
}

// CountingConverterStub writes a stub that records each invocation as one
// line in a log file before copying input to output. It returns the stub
// path and a function reporting the invocation count.
func CountingConverterStub(t testing.TB) (string, func() int) {
	t.Helper()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	script := "#!/bin/sh\necho \"$1\" >> \"" + logPath + "\"\ncp \"$1\" \"$2\"\nexit 0\n"
	path := filepath.Join(dir, "xpstopdf")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write converter stub: %v", err)
	}

	count := func() int {
		data, err := os.ReadFile(logPath)
		if err != nil {
			return 0
		}
		n := 0
		for _, b := range data {
			if b == '\n' {
				n++
			}
		}
		return n
	}
	return path, count
}
