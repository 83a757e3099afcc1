// Package author matches academic-profile search results against roster
// names.
package author

import (
	"sort"
	"strings"

	"github.com/matsen/scholarnet/internal/asta"
	"github.com/matsen/scholarnet/internal/scholar"
)

// Query is a parsed roster name used to filter search results.
type Query struct {
	First string // given names, may be empty
	Last  string
}

// ParseQuery parses a roster name with scholar.ParseName.
func ParseQuery(name string) Query {
	p := scholar.ParseName(name)
	return Query{First: p.First, Last: p.Last}
}

// Matches reports whether a profile name agrees with the query.
//
// Surnames must match case-insensitively. When the query has given names,
// each given name in the query must prefix the corresponding given name of
// the candidate, so "J Doe" matches "Jane Q Doe" but "Jane Doe" does not
// match "Jo Doe".
func (q Query) Matches(name string) bool {
	if q.Last == "" {
		return false
	}
	p := scholar.ParseName(name)
	if !strings.EqualFold(q.Last, p.Last) {
		return false
	}

	want := strings.Fields(strings.ToLower(q.First))
	got := strings.Fields(strings.ToLower(p.First))
	if len(want) > len(got) {
		return false
	}
	for i, w := range want {
		w = strings.TrimSuffix(w, ".")
		if !strings.HasPrefix(got[i], w) {
			return false
		}
	}
	return true
}

// Candidate is a search result annotated with whether it matches the query.
type Candidate struct {
	asta.Author
	Match bool `json:"match"`
}

// Rank annotates authors against name. Matching authors come first, then
// authors with more papers; ties keep search order.
func Rank(name string, authors []asta.Author) []Candidate {
	q := ParseQuery(name)
	out := make([]Candidate, len(authors))
	for i, a := range authors {
		out[i] = Candidate{Author: a, Match: q.Matches(a.Name)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Match != out[j].Match {
			return out[i].Match
		}
		return out[i].PaperCount > out[j].PaperCount
	})
	return out
}

// Matching returns only the candidates that match.
func Matching(cs []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cs))
	for _, c := range cs {
		if c.Match {
			out = append(out, c)
		}
	}
	return out
}
