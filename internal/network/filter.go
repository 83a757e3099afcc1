package network

import "fmt"

// FilterMode selects how a member set restricts pairs.
type FilterMode string

const (
	// ModeEgo keeps a pair when either endpoint is a member, so the result
	// includes each member's collaborators.
	ModeEgo FilterMode = "ego"
	// ModeInduced keeps a pair only when both endpoints are members.
	ModeInduced FilterMode = "induced"
)

// ParseFilterMode parses a configured mode. Empty selects ModeEgo.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(s) {
	case "", ModeEgo:
		return ModeEgo, nil
	case ModeInduced:
		return ModeInduced, nil
	default:
		return "", fmt.Errorf("invalid filter mode %q (valid: %s, %s)", s, ModeEgo, ModeInduced)
	}
}

// FilterPairs returns the pairs for which keep returns true, in order.
func FilterPairs(pairs []Pair, keep func(Pair) bool) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Touching returns a predicate matching pairs against a member set.
// Endpoints are compared by exact string, so members and pairs must use
// the same name keys.
func Touching(members map[string]bool, mode FilterMode) func(Pair) bool {
	if mode == ModeInduced {
		return func(p Pair) bool {
			return members[p.A] && members[p.B]
		}
	}
	return func(p Pair) bool {
		return members[p.A] || members[p.B]
	}
}

// Set returns a member set holding names.
func Set(names ...string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}
