// Package app holds the dashboard's application context: the cohort
// registry, the co-authorship provider and the precomputed cohort figures.
// An App is built once at startup and only read afterwards.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matsen/scholarnet/internal/cohort"
	"github.com/matsen/scholarnet/internal/logging"
	"github.com/matsen/scholarnet/internal/metrics"
	"github.com/matsen/scholarnet/internal/network"
	"github.com/matsen/scholarnet/internal/storage"
	"github.com/matsen/scholarnet/internal/viz"
)

// Errors returned by App.
var (
	ErrProvider   = errors.New("co-authorship provider failed")
	ErrNoSnapshot = errors.New("no snapshot (run 'snet build')")
)

// SnapshotStore loads and saves cohort snapshots by name.
// storage.SnapshotDir implements it.
type SnapshotStore interface {
	Load(name string) (*storage.Snapshot, error)
	Save(s *storage.Snapshot) error
}

// Deps is everything New needs.
type Deps struct {
	Registry      *cohort.Registry
	Provider      Provider
	Snapshots     SnapshotStore
	Mode          network.FilterMode
	Spring        network.SpringOptions
	DefaultCohort string // empty selects the first cohort
	BuildMissing  bool   // build and save absent snapshots instead of failing
	Logger        *slog.Logger
}

// Selection is one dashboard request. Empty authors are absent.
type Selection struct {
	Author1 string `json:"author1"`
	Author2 string `json:"author2"`
	Cohort  string `json:"cohort"`
}

// Option is a dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CohortInfo describes a precomputed cohort graph.
type CohortInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Members int    `json:"members"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Stale   bool   `json:"stale"`
}

// App is the read-only application context shared by request handlers.
type App struct {
	builder       Builder
	defaultCohort string
	figures       map[string]*viz.Figure
	info          []CohortInfo
	log           *slog.Logger
}

// New loads or builds a figure for every cohort and for AllCohorts.
func New(ctx context.Context, d Deps) (*App, error) {
	if d.Registry == nil || d.Provider == nil {
		return nil, errors.New("app: registry and provider are required")
	}
	names := d.Registry.Names()
	if len(names) == 0 {
		return nil, errors.New("app: no cohorts registered")
	}

	a := &App{
		builder: Builder{
			Registry: d.Registry,
			Provider: d.Provider,
			Mode:     d.Mode,
			Spring:   d.Spring,
		},
		defaultCohort: d.DefaultCohort,
		figures:       make(map[string]*viz.Figure),
		log:           logging.OrDiscard(d.Logger),
	}
	if a.defaultCohort == "" {
		a.defaultCohort = names[0]
	}
	if !d.Registry.Has(a.defaultCohort) {
		return nil, fmt.Errorf("default %w: %s", cohort.ErrUnknownCohort, a.defaultCohort)
	}

	for _, name := range a.builder.GraphNames() {
		snap, stale, err := a.loadSnapshot(ctx, d, name)
		if err != nil {
			return nil, fmt.Errorf("cohort %s: %w", name, err)
		}

		g, pos := snap.Graph(), snap.Layout()
		edges, nodes, err := viz.BuildTraces(g, pos, viz.NoFocus)
		if err != nil {
			return nil, fmt.Errorf("cohort %s: %w", name, err)
		}
		a.figures[name] = viz.Compose(edges, nodes, a.cohortTitle(name)+" Network Graph")

		info := CohortInfo{
			Name:  name,
			Title: a.cohortTitle(name),
			Nodes: g.NumNodes(),
			Edges: g.NumEdges(),
			Stale: stale,
		}
		if name == AllCohorts {
			info.Members = len(d.Registry.AllNames())
		} else {
			members, _ := d.Registry.Members(name)
			info.Members = len(members)
		}
		a.info = append(a.info, info)
		metrics.GraphNodes.WithLabelValues(name).Set(float64(g.NumNodes()))
	}

	return a, nil
}

// loadSnapshot returns the stored snapshot for name, building it when
// absent and allowed.
func (a *App) loadSnapshot(ctx context.Context, d Deps, name string) (*storage.Snapshot, bool, error) {
	if d.Snapshots != nil {
		snap, err := d.Snapshots.Load(name)
		if err == nil {
			stale, err := a.builder.IsStale(ctx, snap)
			if err != nil {
				return nil, false, err
			}
			if stale {
				a.log.Warn("snapshot is stale; run 'snet build' to refresh", "cohort", name)
			}
			return snap, stale, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, err
		}
	}

	if !d.BuildMissing {
		return nil, false, ErrNoSnapshot
	}

	start := time.Now()
	snap, err := a.builder.Snapshot(ctx, name)
	if err != nil {
		return nil, false, err
	}
	metrics.FigureBuilds.WithLabelValues("cohort").Inc()
	metrics.FigureBuildDuration.WithLabelValues("cohort").Observe(time.Since(start).Seconds())
	a.log.Info("built cohort graph", "cohort", name, "nodes", len(snap.Nodes), "edges", len(snap.Edges))

	if d.Snapshots != nil {
		if err := d.Snapshots.Save(snap); err != nil {
			return nil, false, err
		}
	}
	return snap, false, nil
}

// cohortTitle returns a cohort's display title.
func (a *App) cohortTitle(name string) string {
	if name == AllCohorts {
		return "All Scholars"
	}
	c, err := a.builder.Registry.Get(name)
	if err != nil || c.Title == "" {
		return name
	}
	return c.Title
}

// resolveCohort maps an empty cohort to the default and checks the rest.
func (a *App) resolveCohort(name string) (string, error) {
	if name == "" {
		return a.defaultCohort, nil
	}
	if name == AllCohorts || a.builder.Registry.Has(name) {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", cohort.ErrUnknownCohort, name)
}

// DefaultCohort returns the cohort shown when a request names none.
func (a *App) DefaultCohort() string {
	return a.defaultCohort
}

// Cohorts describes every precomputed graph in registry order, AllCohorts last.
func (a *App) Cohorts() []CohortInfo {
	return append([]CohortInfo(nil), a.info...)
}

// Figure returns the figure for a selection. With no authors it is the
// precomputed cohort figure; otherwise the network of pairs touching either
// author, with the selected authors marked as focus nodes.
func (a *App) Figure(ctx context.Context, sel Selection) (*viz.Figure, error) {
	name, err := a.resolveCohort(sel.Cohort)
	if err != nil {
		return nil, err
	}

	author1 := strings.TrimSpace(sel.Author1)
	author2 := strings.TrimSpace(sel.Author2)
	if author1 == "" && author2 == "" {
		return a.figures[name], nil
	}
	return a.pairFigure(ctx, author1, author2)
}

func (a *App) pairFigure(ctx context.Context, author1, author2 string) (*viz.Figure, error) {
	start := time.Now()
	norm := a.builder.Registry.Normalizer()

	var focus viz.Focus
	var keys []string
	if author1 != "" {
		focus.First = norm.Normalize(author1)
		keys = append(keys, focus.First)
	}
	if author2 != "" {
		focus.Second = norm.Normalize(author2)
		if focus.Second != focus.First {
			keys = append(keys, focus.Second)
		}
	}

	pairs, err := a.builder.Provider.CoauthorPairs(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	g := network.Build(pairs)
	pos := network.Spring(g, a.builder.Spring)
	edges, nodes, err := viz.BuildTraces(g, pos, focus)
	if err != nil {
		return nil, err
	}
	fig := viz.Compose(edges, nodes, PairTitle(author1, author2))

	metrics.FigureBuilds.WithLabelValues("pair").Inc()
	metrics.FigureBuildDuration.WithLabelValues("pair").Observe(time.Since(start).Seconds())
	a.log.Debug("built pair figure", "author1", author1, "author2", author2,
		"nodes", g.NumNodes(), "edges", g.NumEdges())
	return fig, nil
}

// Options lists a cohort's scholars for a dropdown, leaving out exclude,
// the other dropdown's selection. Names with the same key as exclude are
// left out too.
func (a *App) Options(cohortName, exclude string) ([]Option, error) {
	name, err := a.resolveCohort(cohortName)
	if err != nil {
		return nil, err
	}

	var names []string
	if name == AllCohorts {
		names = a.builder.Registry.AllNames()
	} else {
		names, err = a.builder.Registry.Members(name)
		if err != nil {
			return nil, err
		}
	}

	norm := a.builder.Registry.Normalizer()
	skip := ""
	if exclude = strings.TrimSpace(exclude); exclude != "" {
		skip = norm.Normalize(exclude)
	}

	out := make([]Option, 0, len(names))
	for _, n := range names {
		if skip != "" && norm.Normalize(n) == skip {
			continue
		}
		out = append(out, Option{Label: n, Value: n})
	}
	return out, nil
}

// PairTitle titles a pair figure "<Author1> x <Author2> Network Graph",
// title-casing each name and writing "..." for an absent one.
func PairTitle(author1, author2 string) string {
	return titleOrEllipsis(author1) + " x " + titleOrEllipsis(author2) + " Network Graph"
}

func titleOrEllipsis(name string) string {
	if name == "" {
		return "..."
	}
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(name)
}
