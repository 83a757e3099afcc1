// Package scholar loads scholar rosters and maps display names to the
// keys used as graph node identifiers.
package scholar

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeyFunc maps a display name to the key used to join scholars across
// rosters and co-authorship data. Two names with the same key are the
// same node.
type KeyFunc func(name string) string

// Key function names accepted by KeyFuncByName.
const (
	KeyInitialSurname = "initial-surname"
	KeyFirstLast      = "first-last"
	KeyIdentity       = "identity"
)

// Parts is a display name split into given names and surname.
type Parts struct {
	First string // given names, possibly several words or empty
	Last  string
}

// ParseName splits a display name.
//
// Supported formats:
//   - "Yu"           -> last="Yu"
//   - "Timothy C Yu" -> first="Timothy C", last="Yu"
//   - "Yu, Timothy"  -> first="Timothy", last="Yu"
func ParseName(name string) Parts {
	name = strings.TrimSpace(name)
	if name == "" {
		return Parts{}
	}

	if idx := strings.Index(name, ","); idx > 0 {
		return Parts{
			First: Identity(name[idx+1:]),
			Last:  Identity(name[:idx]),
		}
	}

	fields := strings.Fields(name)
	if len(fields) == 1 {
		return Parts{Last: fields[0]}
	}
	return Parts{
		First: strings.Join(fields[:len(fields)-1], " "),
		Last:  fields[len(fields)-1],
	}
}

// InitialSurname collapses a name to its uppercased first initial and
// its surname: "jane q. mcginty" -> "J mcginty".
// Names without given names collapse to the surname alone.
func InitialSurname(name string) string {
	p := ParseName(name)
	if p.First == "" {
		return p.Last
	}
	r, _ := utf8.DecodeRuneInString(p.First)
	return string(unicode.ToUpper(r)) + " " + p.Last
}

// FirstLast keeps the first given name and the surname, dropping middle
// names and initials: "Jane Q. Smith" -> "Jane Smith".
func FirstLast(name string) string {
	p := ParseName(name)
	if p.First == "" {
		return p.Last
	}
	return strings.Fields(p.First)[0] + " " + p.Last
}

// Identity returns the name with surrounding whitespace removed.
func Identity(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// KeyFuncByName resolves a configured key function name.
// An empty name selects InitialSurname.
func KeyFuncByName(name string) (KeyFunc, error) {
	switch name {
	case "", KeyInitialSurname:
		return InitialSurname, nil
	case KeyFirstLast:
		return FirstLast, nil
	case KeyIdentity:
		return Identity, nil
	default:
		return nil, fmt.Errorf("unknown name key %q (valid: %s, %s, %s)",
			name, KeyInitialSurname, KeyFirstLast, KeyIdentity)
	}
}

// DefaultOverrides holds corrections for keys the key function gets wrong.
var DefaultOverrides = map[string]string{
	"J Mcginty": "J McGinty",
}

// Normalizer turns display names into node keys.
// The zero value uses InitialSurname with no overrides.
type Normalizer struct {
	Key       KeyFunc
	Overrides map[string]string // applied to the output of Key
}

// NewNormalizer returns a Normalizer with the given key function and the
// default overrides merged under extra.
func NewNormalizer(key KeyFunc, extra map[string]string) Normalizer {
	overrides := make(map[string]string, len(DefaultOverrides)+len(extra))
	for k, v := range DefaultOverrides {
		overrides[k] = v
	}
	for k, v := range extra {
		overrides[k] = v
	}
	return Normalizer{Key: key, Overrides: overrides}
}

// Normalize returns the node key for a display name.
func (n Normalizer) Normalize(name string) string {
	key := n.Key
	if key == nil {
		key = InitialSurname
	}
	k := key(name)
	if o, ok := n.Overrides[k]; ok {
		return o
	}
	return k
}

// NormalizeAll maps every name to its key, keeping order and duplicates.
func (n Normalizer) NormalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = n.Normalize(name)
	}
	return out
}

// Collisions reports keys shared by more than one distinct display name.
// Each value lists the colliding names sorted.
func Collisions(names []string, n Normalizer) map[string][]string {
	byKey := make(map[string]map[string]bool)
	for _, name := range names {
		clean := Identity(name)
		if clean == "" {
			continue
		}
		k := n.Normalize(clean)
		if byKey[k] == nil {
			byKey[k] = make(map[string]bool)
		}
		byKey[k][clean] = true
	}

	out := make(map[string][]string)
	for k, set := range byKey {
		if len(set) < 2 {
			continue
		}
		list := make([]string, 0, len(set))
		for name := range set {
			list = append(list, name)
		}
		sort.Strings(list)
		out[k] = list
	}
	return out
}
