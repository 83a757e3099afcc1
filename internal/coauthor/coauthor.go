// Package coauthor defines observed collaborations between scholars.
package coauthor

import (
	"errors"
	"time"

	"github.com/matsen/scholarnet/internal/network"
)

// Record is one observed collaboration: two authors on one paper.
type Record struct {
	AuthorA string `json:"author_a"`
	AuthorB string `json:"author_b"`

	// Provenance
	PaperID   string `json:"paper_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Year      int    `json:"year,omitempty"`
	Source    string `json:"source,omitempty"` // scholar ID the record was scraped for
	ScrapedAt string `json:"scraped_at,omitempty"`
}

// Validation errors.
var (
	ErrEmptyAuthorA = errors.New("author_a is required")
	ErrEmptyAuthorB = errors.New("author_b is required")
	ErrSelfPair     = errors.New("author_a and author_b cannot be the same")
)

// Validate checks that a record names two different authors.
func (r *Record) Validate() error {
	if r.AuthorA == "" {
		return ErrEmptyAuthorA
	}
	if r.AuthorB == "" {
		return ErrEmptyAuthorB
	}
	if r.AuthorA == r.AuthorB {
		return ErrSelfPair
	}
	return nil
}

// SetScrapedAt sets the ScrapedAt timestamp to now if not already set.
func (r *Record) SetScrapedAt() {
	if r.ScrapedAt == "" {
		r.ScrapedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// Pair returns the collaboration as a graph pair.
func (r Record) Pair() network.Pair {
	return network.Pair{A: r.AuthorA, B: r.AuthorB}
}

// Key identifies a collaboration on a paper regardless of author order.
type Key struct {
	A, B    string
	PaperID string
}

// Key returns the identity of this record.
func (r Record) Key() Key {
	p := r.Pair().Canonical()
	return Key{A: p.A, B: p.B, PaperID: r.PaperID}
}

// ToPairs converts records to graph pairs, keeping order.
func ToPairs(records []Record) []network.Pair {
	pairs := make([]network.Pair, len(records))
	for i, r := range records {
		pairs[i] = r.Pair()
	}
	return pairs
}

// FromPaper returns one record per co-author of subject on a paper's
// author list. Authors equal to subject or empty are skipped.
func FromPaper(subject string, authors []string, paperID, title string, year int) []Record {
	var out []Record
	seen := make(map[string]bool)
	for _, a := range authors {
		if a == "" || a == subject || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, Record{
			AuthorA: subject,
			AuthorB: a,
			PaperID: paperID,
			Title:   title,
			Year:    year,
		})
	}
	return out
}

// Dedupe drops records whose Key was already seen, keeping the first.
func Dedupe(records []Record) []Record {
	seen := make(map[Key]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
