package scholar

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadDirectory(t *testing.T) {
	input := "\ufeffName,ID,Group\n" +
		"Alice Smith,111,COP\n" +
		",222,COP\n" +
		"  Bob   Jones ,333,ipop\n" +
		"Carol Lee,,SURE\n"

	dir, err := ReadDirectory(strings.NewReader(input), Filter{})
	if err != nil {
		t.Fatalf("ReadDirectory() error = %v", err)
	}

	want := []string{"Alice Smith", "Bob Jones", "Carol Lee"}
	if diff := cmp.Diff(want, dir.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if dir.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", dir.Skipped)
	}
	if got := len(dir.WithIDs()); got != 2 {
		t.Errorf("len(WithIDs()) = %d, want 2", got)
	}
}

func TestReadDirectory_GroupFilter(t *testing.T) {
	input := "Name,Group\nAlice Smith,COP\nBob Jones,IPOP\nCarol Lee,cop\n"

	dir, err := ReadDirectory(strings.NewReader(input), Filter{Group: "COP"})
	if err != nil {
		t.Fatalf("ReadDirectory() error = %v", err)
	}

	want := []string{"Alice Smith", "Carol Lee"}
	if diff := cmp.Diff(want, dir.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDirectory_FirstLastColumns(t *testing.T) {
	input := "First,Last\nAlice,Smith\n,\nBob,\n"

	dir, err := ReadDirectory(strings.NewReader(input), Filter{})
	if err != nil {
		t.Fatalf("ReadDirectory() error = %v", err)
	}

	want := []string{"Alice Smith", "Bob"}
	if diff := cmp.Diff(want, dir.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if dir.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", dir.Skipped)
	}
}

func TestReadDirectory_NoNameColumn(t *testing.T) {
	_, err := ReadDirectory(strings.NewReader("ID,Group\n1,COP\n"), Filter{})
	if !errors.Is(err, ErrNoNameColumn) {
		t.Errorf("ReadDirectory() error = %v, want ErrNoNameColumn", err)
	}
}

func TestReadDirectory_Empty(t *testing.T) {
	dir, err := ReadDirectory(strings.NewReader(""), Filter{})
	if err != nil {
		t.Fatalf("ReadDirectory() error = %v", err)
	}
	if len(dir.Scholars) != 0 {
		t.Errorf("len(Scholars) = %d, want 0", len(dir.Scholars))
	}
}

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte("Name\nAlice Smith\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err := LoadDirectory(path, Filter{})
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(dir.Scholars) != 1 || dir.Scholars[0].Name != "Alice Smith" {
		t.Errorf("Scholars = %+v, want [Alice Smith]", dir.Scholars)
	}

	if _, err := LoadDirectory(filepath.Join(t.TempDir(), "missing.csv"), Filter{}); err == nil {
		t.Error("LoadDirectory() on missing file should fail")
	}
}
