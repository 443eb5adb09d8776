package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dwfx2pdf/internal/fileutil"
	"dwfx2pdf/internal/testsupport"
)

func writeConfigFile(t *testing.T, binary string) string {
	t.Helper()
	root := t.TempDir()
	content := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
upload_dir = %q
log_dir = %q

[convert]
workers = 2
binary = %q

[web]
bind = ""
`,
		filepath.Join(root, "in"),
		filepath.Join(root, "out"),
		filepath.Join(root, "uploads"),
		filepath.Join(root, "logs"),
		binary,
	)
	path := filepath.Join(root, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvertCommandBatch(t *testing.T) {
	binary := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)
	cfgPath := writeConfigFile(t, binary)

	inDir := filepath.Join(filepath.Dir(cfgPath), "in")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(inDir, "alpha.dwfx"), 64)
	testsupport.WriteFile(t, filepath.Join(inDir, "beta.dwfx"), 64)
	testsupport.WriteFile(t, filepath.Join(inDir, "ignored.txt"), 64)

	out, err := runCommand(t, "--config", cfgPath, "convert")
	if err != nil {
		t.Fatalf("convert: %v\noutput: %s", err, out)
	}

	outDir := filepath.Join(filepath.Dir(cfgPath), "out")
	for _, name := range []string{"alpha.pdf", "beta.pdf"} {
		if !fileutil.NonEmptyFile(filepath.Join(outDir, name)) {
			t.Errorf("%s missing or empty", name)
		}
	}
	if !strings.Contains(out, "2 converted") {
		t.Errorf("summary missing from output: %s", out)
	}
}

func TestConvertCommandReportsFailures(t *testing.T) {
	binary := testsupport.WriteConverterStub(t, testsupport.ConverterCrash)
	cfgPath := writeConfigFile(t, binary)

	inDir := filepath.Join(filepath.Dir(cfgPath), "in")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(inDir, "bad.dwfx"), 64)

	out, err := runCommand(t, "--config", cfgPath, "convert")
	if err == nil {
		t.Fatalf("expected failure exit, output: %s", out)
	}
	if !strings.Contains(err.Error(), "1 of 1 conversions failed") {
		t.Errorf("err = %v", err)
	}
}

func TestConvertCommandRejectsWrongExtension(t *testing.T) {
	binary := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)
	cfgPath := writeConfigFile(t, binary)

	stray := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteFile(t, stray, 16)

	if _, err := runCommand(t, "--config", cfgPath, "convert", stray); err == nil {
		t.Fatal("expected error for non-dwfx argument")
	}
}

func TestHistoryCommandAfterBatch(t *testing.T) {
	binary := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)
	cfgPath := writeConfigFile(t, binary)

	inDir := filepath.Join(filepath.Dir(cfgPath), "in")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(inDir, "logged.dwfx"), 64)

	if out, err := runCommand(t, "--config", cfgPath, "convert"); err != nil {
		t.Fatalf("convert: %v\noutput: %s", err, out)
	}

	out, err := runCommand(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "logged.dwfx") {
		t.Errorf("history output missing entry: %s", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output = %s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCollectInputsSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b.dwfx"), 16)
	testsupport.WriteFile(t, filepath.Join(dir, "a.DWFX"), 16)
	testsupport.WriteFile(t, filepath.Join(dir, "skip.pdf"), 16)

	inputs, err := collectInputs([]string{dir}, "")
	if err != nil {
		t.Fatalf("collectInputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("inputs = %v", inputs)
	}
	if filepath.Base(inputs[0]) != "a.DWFX" || filepath.Base(inputs[1]) != "b.dwfx" {
		t.Fatalf("order = %v", inputs)
	}
}
