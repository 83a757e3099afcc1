package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/storage"
)

var buildCheck bool

var buildCmd = &cobra.Command{
	Use:   "build [cohort...]",
	Short: "Lay out and store whole-cohort graphs",
	Long: `Build each cohort's graph (and the "all" graph covering every cohort)
from the co-authorship cache, lay it out, and store it under
.scholarnet/snapshots/ so the dashboard starts without recomputing layouts.

Cohort graphs keep pairs touching a member ("ego") or pairs between two
members ("induced"), per filter_mode in config.json.

With --check nothing is written; the command reports which snapshots are
missing or no longer match the pairs, exiting 4 if any are.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildCheck, "check", false, "Report stale snapshots without rebuilding")
	rootCmd.AddCommand(buildCmd)
}

// BuildEntry describes one snapshot.
type BuildEntry struct {
	Cohort string `json:"cohort"`
	Status string `json:"status"` // built, current, stale, missing
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	Path   string `json:"path"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	log := newLogger()

	reg := mustLoadRegistry(repoRoot, cfg, log)
	db := mustOpenPairs(repoRoot, cfg, log)
	defer db.Close()

	b := newBuilder(cfg, reg, db)
	names := args
	if len(names) == 0 {
		names = b.GraphNames()
	}

	ctx := context.Background()
	dir := storage.SnapshotDir(config.SnapshotsPath(repoRoot))
	var entries []BuildEntry
	outdated := 0

	for _, name := range names {
		path, err := dir.Path(name)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		entry := BuildEntry{Cohort: name, Path: path}

		if buildCheck {
			snap, err := dir.Load(name)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				entry.Status = "missing"
				outdated++
			case err != nil:
				exitWithError(ExitDataError, "%v", err)
			default:
				stale, err := b.IsStale(ctx, snap)
				if err != nil {
					exitWithError(ExitConfigError, "cohort %s: %v", name, err)
				}
				entry.Status = "current"
				if stale {
					entry.Status = "stale"
					outdated++
				}
				entry.Nodes, entry.Edges = len(snap.Nodes), len(snap.Edges)
			}
			entries = append(entries, entry)
			continue
		}

		snap, err := b.Snapshot(ctx, name)
		if err != nil {
			exitWithError(ExitConfigError, "cohort %s: %v", name, err)
		}
		if err := dir.Save(snap); err != nil {
			exitWithError(ExitError, "saving snapshot: %v", err)
		}
		log.Info("stored snapshot", "cohort", name, "nodes", len(snap.Nodes), "edges", len(snap.Edges))
		entry.Status = "built"
		entry.Nodes, entry.Edges = len(snap.Nodes), len(snap.Edges)
		entries = append(entries, entry)
	}

	if humanOutput {
		for _, e := range entries {
			fmt.Printf("%-8s %-8s %5d nodes %5d edges\n", e.Cohort, e.Status, e.Nodes, e.Edges)
		}
	} else {
		outputJSON(entries)
	}

	if buildCheck && outdated > 0 {
		os.Exit(ExitStale)
	}
	return nil
}
