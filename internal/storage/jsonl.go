// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/scholarnet/internal/coauthor"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAllRecords reads all co-authorship records from a JSONL file.
// A missing file reads as empty. Any invalid record fails the read.
func ReadAllRecords(path string) ([]coauthor.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening pairs file: %w", err)
	}
	defer f.Close()

	var records []coauthor.Record
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r coauthor.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record at line %d: %w", lineNum, err)
		}

		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pairs file: %w", err)
	}

	return records, nil
}

// writeRecordJSONL marshals a record to JSON and writes it as a JSONL line.
func writeRecordJSONL(w io.Writer, r coauthor.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// AppendRecords adds records to the end of a JSONL file.
func AppendRecords(path string, records []coauthor.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening pairs file for append: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		if err := writeRecordJSONL(w, r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing pairs file: %w", err)
	}
	return nil
}

// WriteAllRecords writes all records to a JSONL file, replacing existing content.
func WriteAllRecords(path string, records []coauthor.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pairs file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		if err := writeRecordJSONL(w, r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing pairs file: %w", err)
	}
	return nil
}

// RecordSink appends records to a JSONL file.
type RecordSink struct {
	Path string
}

// Write appends records, stamping any without a scrape time.
func (s RecordSink) Write(records []coauthor.Record) error {
	for i := range records {
		records[i].SetScrapedAt()
	}
	return AppendRecords(s.Path, records)
}
