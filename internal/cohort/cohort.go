// Package cohort holds the named scholar groups shown by the dashboard.
package cohort

import (
	"errors"
	"fmt"

	"github.com/matsen/scholarnet/internal/scholar"
)

// Cohort is a named group of scholars defined by a roster.
type Cohort struct {
	Name    string   `json:"name"`
	Title   string   `json:"title,omitempty"`
	Members []string `json:"members"` // display names in roster order
}

// Errors returned by Registry.
var (
	ErrEmptyName     = errors.New("cohort name is required")
	ErrDuplicate     = errors.New("cohort already registered")
	ErrUnknownCohort = errors.New("unknown cohort")
)

// Registry is an ordered set of cohorts sharing one name normalizer.
// Build it once; it is safe for concurrent reads afterwards.
type Registry struct {
	norm    scholar.Normalizer
	order   []string
	cohorts map[string]*Cohort
	keys    map[string]map[string]bool
}

// NewRegistry returns an empty registry keyed by norm.
func NewRegistry(norm scholar.Normalizer) *Registry {
	return &Registry{
		norm:    norm,
		cohorts: make(map[string]*Cohort),
		keys:    make(map[string]map[string]bool),
	}
}

// Add registers a cohort. Names must be unique.
func (r *Registry) Add(c Cohort) error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if _, ok := r.cohorts[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
	}

	keys := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		keys[r.norm.Normalize(m)] = true
	}
	delete(keys, "")

	stored := c
	stored.Members = append([]string(nil), c.Members...)
	r.cohorts[c.Name] = &stored
	r.keys[c.Name] = keys
	r.order = append(r.order, c.Name)
	return nil
}

// Normalizer returns the normalizer used for membership keys.
func (r *Registry) Normalizer() scholar.Normalizer {
	return r.norm
}

// Names returns cohort names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Get returns a copy of the named cohort.
func (r *Registry) Get(name string) (Cohort, error) {
	c, ok := r.cohorts[name]
	if !ok {
		return Cohort{}, fmt.Errorf("%w: %s", ErrUnknownCohort, name)
	}
	out := *c
	out.Members = append([]string(nil), c.Members...)
	return out, nil
}

// Has reports whether a cohort is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.cohorts[name]
	return ok
}

// Members returns the display names of a cohort.
func (r *Registry) Members(name string) ([]string, error) {
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return c.Members, nil
}

// Keys returns the union of the member keys of the named cohorts.
// With no names it covers every registered cohort.
func (r *Registry) Keys(names ...string) (map[string]bool, error) {
	if len(names) == 0 {
		names = r.order
	}
	out := make(map[string]bool)
	for _, name := range names {
		keys, ok := r.keys[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCohort, name)
		}
		for k := range keys {
			out[k] = true
		}
	}
	return out, nil
}

// Intersection returns the keys that belong to every named cohort.
func (r *Registry) Intersection(names ...string) (map[string]bool, error) {
	if len(names) == 0 {
		return map[string]bool{}, nil
	}
	for _, name := range names {
		if _, ok := r.keys[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCohort, name)
		}
	}

	out := make(map[string]bool)
	for k := range r.keys[names[0]] {
		in := true
		for _, name := range names[1:] {
			if !r.keys[name][k] {
				in = false
				break
			}
		}
		if in {
			out[k] = true
		}
	}
	return out, nil
}

// Contains reports whether a display name belongs to the named cohort.
func (r *Registry) Contains(cohort, name string) bool {
	return r.keys[cohort][r.norm.Normalize(name)]
}

// AllNames returns the display names of every cohort, in registration
// and roster order, keeping the first display name seen for each key.
func (r *Registry) AllNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range r.order {
		for _, m := range r.cohorts[name].Members {
			k := r.norm.Normalize(m)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, m)
		}
	}
	return out
}
