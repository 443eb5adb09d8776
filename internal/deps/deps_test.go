package deps

import (
	"path/filepath"
	"testing"

	"dwfx2pdf/internal/testsupport"
)

func TestCheckBinariesFindsExplicitPath(t *testing.T) {
	binary := testsupport.WriteConverterStub(t, testsupport.ConverterCopy)

	statuses := CheckBinaries(ConverterRequirements(binary))
	if len(statuses) != 1 {
		t.Fatalf("statuses = %+v", statuses)
	}
	got := statuses[0]
	if !got.Available {
		t.Fatalf("converter not found: %s", got.Detail)
	}
	if got.Path != binary {
		t.Errorf("path = %q, want %q", got.Path, binary)
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent-converter")

	statuses := CheckBinaries(ConverterRequirements(missing))
	got := statuses[0]
	if got.Available {
		t.Fatal("missing binary reported available")
	}
	if got.Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "converter"}})
	got := statuses[0]
	if got.Available || got.Detail != "command not configured" {
		t.Fatalf("status = %+v", got)
	}
}
