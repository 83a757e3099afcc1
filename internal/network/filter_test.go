package network

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterPairs_Ego(t *testing.T) {
	pairs := []Pair{{"X", "Y"}, {"Y", "Z"}}

	tests := []struct {
		name    string
		members map[string]bool
		want    []Pair
	}{
		{"only pairs containing X", Set("X"), []Pair{{"X", "Y"}}},
		{"Y touches both", Set("Y"), []Pair{{"X", "Y"}, {"Y", "Z"}}},
		{"X or Z", Set("X", "Z"), []Pair{{"X", "Y"}, {"Y", "Z"}}},
		{"no members", Set(), []Pair{}},
		{"unknown member", Set("W"), []Pair{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPairs(pairs, Touching(tt.members, ModeEgo))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterPairs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterPairs_Induced(t *testing.T) {
	pairs := []Pair{{"X", "Y"}, {"Y", "Z"}, {"X", "Z"}}

	got := FilterPairs(pairs, Touching(Set("X", "Z"), ModeInduced))
	want := []Pair{{"X", "Z"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterPairs(induced) mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFilterMode(t *testing.T) {
	tests := []struct {
		input   string
		want    FilterMode
		wantErr bool
	}{
		{"", ModeEgo, false},
		{"ego", ModeEgo, false},
		{"induced", ModeInduced, false},
		{"strict", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFilterMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilterMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilterMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
