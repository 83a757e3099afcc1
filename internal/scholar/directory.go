package scholar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Scholar is one row of a cohort roster.
type Scholar struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"` // academic-profile author ID
	Group string `json:"group,omitempty"`
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
}

// Filter selects roster rows. Empty fields match everything.
type Filter struct {
	Group string // case-insensitive match on the Group column
}

// Directory is a loaded roster.
type Directory struct {
	Scholars []Scholar
	Skipped  int // rows dropped for having no usable name
}

// ErrNoNameColumn is returned when a roster has neither a Name column nor
// both First and Last columns.
var ErrNoNameColumn = errors.New("roster has no Name or First/Last columns")

const utf8BOM = "\ufeff"

// LoadDirectory reads a roster CSV file.
func LoadDirectory(path string, filter Filter) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	dir, err := ReadDirectory(f, filter)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	return dir, nil
}

// ReadDirectory parses roster CSV from r. The first row is the header;
// column names are matched case-insensitively.
func ReadDirectory(r io.Reader, filter Filter) (*Directory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Directory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	_, hasName := cols["name"]
	_, hasFirst := cols["first"]
	_, hasLast := cols["last"]
	if !hasName && !(hasFirst && hasLast) {
		return nil, ErrNoNameColumn
	}

	field := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	dir := &Directory{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		s := Scholar{
			Name:  Identity(field(row, "name")),
			ID:    field(row, "id"),
			Group: field(row, "group"),
			First: field(row, "first"),
			Last:  field(row, "last"),
		}
		if filter.Group != "" && !strings.EqualFold(s.Group, filter.Group) {
			continue
		}
		if s.Name == "" {
			s.Name = Identity(s.First + " " + s.Last)
		}
		if s.Name == "" {
			dir.Skipped++
			continue
		}
		dir.Scholars = append(dir.Scholars, s)
	}

	return dir, nil
}

// Names returns the display names in roster order.
func (d *Directory) Names() []string {
	names := make([]string, len(d.Scholars))
	for i, s := range d.Scholars {
		names[i] = s.Name
	}
	return names
}

// WithIDs returns the scholars that have an academic-profile ID.
func (d *Directory) WithIDs() []Scholar {
	var out []Scholar
	for _, s := range d.Scholars {
		if s.ID != "" {
			out = append(out, s)
		}
	}
	return out
}
