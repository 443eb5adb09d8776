package convert_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/testsupport"
)

func newTask(t *testing.T, overwrite bool) (convert.Task, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "drawing.dwfx")
	testsupport.WriteFile(t, input, 256)
	outDir := filepath.Join(dir, "pdf")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return convert.NewTask(input, outDir, overwrite), outDir
}

func TestExecuteSuccess(t *testing.T) {
	stub := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, false)

	outcome := runner.Execute(context.Background(), task)
	if !outcome.Success || outcome.Skipped {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Output != task.OutputPath {
		t.Fatalf("output = %q, want %q", outcome.Output, task.OutputPath)
	}
	if info, err := os.Stat(task.OutputPath); err != nil || info.Size() == 0 {
		t.Fatalf("output missing or empty: %v", err)
	}
}

func TestExecuteSkipsExistingOutput(t *testing.T) {
	stub, invocations := testsupport.CountingConverterStub(t)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, false)
	testsupport.WriteFile(t, task.OutputPath, 64)

	outcome := runner.Execute(context.Background(), task)
	if !outcome.Success || !outcome.Skipped {
		t.Fatalf("expected skipped success, got %+v", outcome)
	}
	if got := invocations(); got != 0 {
		t.Fatalf("converter invoked %d times, want 0", got)
	}
}

func TestExecuteOverwriteReconverts(t *testing.T) {
	stub, invocations := testsupport.CountingConverterStub(t)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, true)
	testsupport.WriteFile(t, task.OutputPath, 64)

	outcome := runner.Execute(context.Background(), task)
	if !outcome.Success || outcome.Skipped {
		t.Fatalf("expected fresh conversion, got %+v", outcome)
	}
	if got := invocations(); got != 1 {
		t.Fatalf("converter invoked %d times, want 1", got)
	}
}

func TestExecuteCrashRemovesPartialOutput(t *testing.T) {
	stub := testsupport.WriteConverterStub(t, testsupport.ConverterPartialCrash)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, false)

	outcome := runner.Execute(context.Background(), task)
	if outcome.Success {
		t.Fatalf("expected failure, got %+v", outcome)
	}
	if outcome.Err == nil || outcome.Err.Kind != convert.KindConverterCrashed {
		t.Fatalf("kind = %v, want converter_crashed", outcome.Err)
	}
	if _, err := os.Stat(task.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("partial output not cleaned up: %v", err)
	}
}

func TestExecuteCapturesDiagnostic(t *testing.T) {
	stub := testsupport.WriteConverterStub(t, testsupport.ConverterCrash)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, false)

	outcome := runner.Execute(context.Background(), task)
	if outcome.Err == nil || outcome.Err.Kind != convert.KindConverterCrashed {
		t.Fatalf("expected crash, got %+v", outcome)
	}
	if msg := outcome.FailureMessage(); msg == "" {
		t.Fatal("expected diagnostic text in failure message")
	}
}

func TestExecuteEmptyOutputIsFailure(t *testing.T) {
	stub := testsupport.WriteConverterStub(t, testsupport.ConverterEmptyOutput)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, false)

	outcome := runner.Execute(context.Background(), task)
	if outcome.Success {
		t.Fatal("zero-byte output must be classified as failure")
	}
	if outcome.Err.Kind != convert.KindEmptyOutput {
		t.Fatalf("kind = %v, want empty_output", outcome.Err.Kind)
	}
	if _, err := os.Stat(task.OutputPath); !os.IsNotExist(err) {
		t.Fatal("empty output file should be removed")
	}
}

func TestExecuteRetriesWithXPSCopy(t *testing.T) {
	stub := testsupport.WriteConverterStub(t, testsupport.ConverterXPSOnly)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task, _ := newTask(t, false)

	outcome := runner.Execute(context.Background(), task)
	if !outcome.Success {
		t.Fatalf("expected .xps retry to succeed, got %+v", outcome)
	}
	if _, err := os.Stat(task.InputPath + ".xps"); !os.IsNotExist(err) {
		t.Fatal("temporary .xps copy not removed")
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	runner := convert.NewCLI(convert.WithBinary(filepath.Join(t.TempDir(), "missing-converter")))
	task, _ := newTask(t, false)

	outcome := runner.Execute(context.Background(), task)
	if outcome.Err == nil || outcome.Err.Kind != convert.KindConverterNotFound {
		t.Fatalf("kind = %+v, want converter_not_found", outcome.Err)
	}
}

func TestExecuteMissingInput(t *testing.T) {
	stub := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)
	runner := convert.NewCLI(convert.WithBinary(stub))
	task := convert.NewTask(filepath.Join(t.TempDir(), "gone.dwfx"), t.TempDir(), false)

	outcome := runner.Execute(context.Background(), task)
	if outcome.Err == nil || outcome.Err.Kind != convert.KindIOError {
		t.Fatalf("kind = %+v, want io_error", outcome.Err)
	}
}

func TestOutputName(t *testing.T) {
	cases := map[string]string{
		"/in/plan.dwfx":     "plan.pdf",
		"/in/PLAN.DWFX":     "PLAN.pdf",
		"/in/noext":         "noext.pdf",
		"/in/two.dots.dwfx": "two.dots.pdf",
	}
	for input, want := range cases {
		if got := convert.OutputName(input); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestHasInputExtension(t *testing.T) {
	if !convert.HasInputExtension("/x/a.DwFx") {
		t.Fatal("extension match should be case-insensitive")
	}
	if convert.HasInputExtension("/x/a.pdf") {
		t.Fatal("pdf must not match input extension")
	}
}
