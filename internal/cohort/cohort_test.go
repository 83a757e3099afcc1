package cohort

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/scholarnet/internal/scholar"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(scholar.Normalizer{Key: scholar.InitialSurname})
	cohorts := []Cohort{
		{Name: "COP", Members: []string{"Alice Smith", "Bob Jones"}},
		{Name: "IPOP", Members: []string{"Bob Jones", "Carol Lee"}},
		{Name: "SURE", Members: []string{"Al Smith", "Dan Wu"}},
	}
	for _, c := range cohorts {
		if err := r.Add(c); err != nil {
			t.Fatalf("Add(%s) error = %v", c.Name, err)
		}
	}
	return r
}

func TestRegistry_Add(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Add(Cohort{Name: "COP"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add(duplicate) error = %v, want ErrDuplicate", err)
	}
	if err := r.Add(Cohort{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Add(empty) error = %v, want ErrEmptyName", err)
	}

	want := []string{"COP", "IPOP", "SURE"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Keys(t *testing.T) {
	r := newTestRegistry(t)

	got, err := r.Keys("COP", "IPOP")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := map[string]bool{"A Smith": true, "B Jones": true, "C Lee": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Keys(COP, IPOP) mismatch (-want +got):\n%s", diff)
	}

	all, err := r.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("len(Keys()) = %d, want 4", len(all))
	}

	if _, err := r.Keys("NOPE"); !errors.Is(err, ErrUnknownCohort) {
		t.Errorf("Keys(NOPE) error = %v, want ErrUnknownCohort", err)
	}
}

func TestRegistry_Intersection(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name    string
		cohorts []string
		want    map[string]bool
	}{
		{"COP and IPOP share Bob", []string{"COP", "IPOP"}, map[string]bool{"B Jones": true}},
		{"COP and SURE share a key", []string{"COP", "SURE"}, map[string]bool{"A Smith": true}},
		{"all three share nothing", []string{"COP", "IPOP", "SURE"}, map[string]bool{}},
		{"no cohorts", nil, map[string]bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Intersection(tt.cohorts...)
			if err != nil {
				t.Fatalf("Intersection() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Intersection() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegistry_AllNames(t *testing.T) {
	r := newTestRegistry(t)

	// "Al Smith" collapses onto "Alice Smith" and is dropped.
	want := []string{"Alice Smith", "Bob Jones", "Carol Lee", "Dan Wu"}
	if diff := cmp.Diff(want, r.AllNames()); diff != "" {
		t.Errorf("AllNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Contains(t *testing.T) {
	r := newTestRegistry(t)

	if !r.Contains("IPOP", "Carol Lee") {
		t.Error("Contains(IPOP, Carol Lee) = false, want true")
	}
	if r.Contains("COP", "Carol Lee") {
		t.Error("Contains(COP, Carol Lee) = true, want false")
	}
	if r.Contains("NOPE", "Carol Lee") {
		t.Error("Contains(NOPE, ...) = true, want false")
	}
}

func TestRegistry_MembersCopied(t *testing.T) {
	r := NewRegistry(scholar.Normalizer{})
	members := []string{"Alice Smith"}
	if err := r.Add(Cohort{Name: "COP", Members: members}); err != nil {
		t.Fatal(err)
	}
	members[0] = "Mallory"

	got, err := r.Members("COP")
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if got[0] != "Alice Smith" {
		t.Errorf("Members()[0] = %q, want %q", got[0], "Alice Smith")
	}
}

func TestRegistry_MembersNotShared(t *testing.T) {
	r := NewRegistry(scholar.Normalizer{})
	if err := r.Add(Cohort{Name: "COP", Members: []string{"Alice Smith", "Bob Jones"}}); err != nil {
		t.Fatal(err)
	}

	got, err := r.Members("COP")
	if err != nil {
		t.Fatal(err)
	}
	got[0] = "Mallory"

	c, err := r.Get("COP")
	if err != nil {
		t.Fatal(err)
	}
	c.Members[1] = "Eve"

	again, err := r.Members("COP")
	if err != nil {
		t.Fatal(err)
	}
	if again[0] != "Alice Smith" || again[1] != "Bob Jones" {
		t.Errorf("Members() = %v after caller edits, want [Alice Smith Bob Jones]", again)
	}
}
