package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/scholarnet/internal/coauthor"
)

func TestReadAllRecords_NonExistentFile(t *testing.T) {
	records, err := ReadAllRecords("/nonexistent/path/pairs.jsonl")
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v (should return nil for nonexistent file)", err)
	}
	if len(records) != 0 {
		t.Errorf("ReadAllRecords() returned %v, want nil or empty slice", records)
	}
}

func TestReadAllRecords_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	content := `{"author_a":"Alice Smith","author_b":"Bob Jones","paper_id":"p1"}

{"author_a":"Bob Jones","author_b":"Carol Lee","paper_id":"p2","year":2022}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadAllRecords(path)
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ReadAllRecords() returned %d records, want 2", len(records))
	}
	if records[1].Year != 2022 {
		t.Errorf("records[1].Year = %d, want 2022", records[1].Year)
	}
}

func TestReadAllRecords_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"self pair", `{"author_a":"A","author_b":"A"}`, coauthor.ErrSelfPair},
		{"missing author", `{"author_a":"A"}`, coauthor.ErrEmptyAuthorB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pairs.jsonl")
			if err := os.WriteFile(path, []byte(tt.content+"\n"), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := ReadAllRecords(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadAllRecords() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	if err := os.WriteFile(path, []byte("{not json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAllRecords(path); err == nil {
		t.Error("ReadAllRecords() should fail on malformed JSON")
	}
}

func TestAppendAndWriteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.jsonl")

	first := []coauthor.Record{{AuthorA: "a", AuthorB: "b", PaperID: "p1"}}
	second := []coauthor.Record{{AuthorA: "b", AuthorB: "c", PaperID: "p2"}}

	if err := AppendRecords(path, first); err != nil {
		t.Fatalf("AppendRecords() error = %v", err)
	}
	if err := AppendRecords(path, second); err != nil {
		t.Fatalf("AppendRecords() error = %v", err)
	}

	got, err := ReadAllRecords(path)
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}
	if diff := cmp.Diff(append(first, second...), got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	if err := WriteAllRecords(path, second); err != nil {
		t.Fatalf("WriteAllRecords() error = %v", err)
	}
	got, err = ReadAllRecords(path)
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("records after WriteAll mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordSink_StampsScrapedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	sink := RecordSink{Path: path}

	if err := sink.Write([]coauthor.Record{{AuthorA: "a", AuthorB: "b"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := ReadAllRecords(path)
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}
	if len(got) != 1 || got[0].ScrapedAt == "" {
		t.Errorf("records = %+v, want one stamped record", got)
	}
}
