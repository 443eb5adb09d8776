package results

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dwfx2pdf/internal/testsupport"
)

func TestListReflectsLiveDirectoryState(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty listing, got %v", names)
	}

	testsupport.WriteFile(t, filepath.Join(dir, "b.pdf"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "a.pdf"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "ignored.txt"), 10)

	names, err = store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "a.pdf" || names[1] != "b.pdf" {
		t.Fatalf("listing = %v, want [a.pdf b.pdf]", names)
	}

	// No stale cache: a deletion shows up on the next call.
	if err := os.Remove(filepath.Join(dir, "a.pdf")); err != nil {
		t.Fatal(err)
	}
	names, err = store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "b.pdf" {
		t.Fatalf("listing = %v, want [b.pdf]", names)
	}
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))
	names, err := store.List()
	if err != nil || names != nil {
		t.Fatalf("List = %v, %v; want nil, nil", names, err)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "good.pdf"), 10)
	store := NewStore(dir)

	for _, name := range []string{"../good.pdf", "sub/good.pdf", "", ".", "..", ".hidden.pdf", "good.txt"} {
		if _, err := store.Resolve(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Resolve(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestResolveExistingOutput(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "plan.pdf"), 10)
	store := NewStore(dir)

	path, err := store.Resolve("plan.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != filepath.Join(dir, "plan.pdf") {
		t.Fatalf("path = %q", path)
	}

	if _, err := store.Resolve("absent.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(absent) = %v, want ErrNotFound", err)
	}
}
