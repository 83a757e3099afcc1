package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/matsen/scholarnet/internal/app"
	"github.com/matsen/scholarnet/internal/cohort"
	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/scholar"
	"github.com/matsen/scholarnet/internal/storage"
)

// roster is one cohort's loaded directory.
type roster struct {
	Cohort    config.CohortConfig
	Directory *scholar.Directory
}

// loadRosters reads every configured cohort roster.
func loadRosters(root string, cfg *config.Config, log *slog.Logger) ([]roster, error) {
	var out []roster
	for _, c := range cfg.Cohorts {
		dir, err := scholar.LoadDirectory(config.RosterPath(root, c), scholar.Filter{Group: c.Group})
		if err != nil {
			return nil, fmt.Errorf("cohort %s: %w", c.Name, err)
		}
		if dir.Skipped > 0 {
			log.Warn("skipped roster rows without a name", "cohort", c.Name, "rows", dir.Skipped)
		}
		out = append(out, roster{Cohort: c, Directory: dir})
	}
	return out, nil
}

// buildRegistry registers every roster under the configured normalizer.
func buildRegistry(cfg *config.Config, rosters []roster) (*cohort.Registry, error) {
	norm, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}
	reg := cohort.NewRegistry(norm)
	for _, r := range rosters {
		err := reg.Add(cohort.Cohort{
			Name:    r.Cohort.Name,
			Title:   r.Cohort.Title,
			Members: r.Directory.Names(),
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// mustLoadRegistry loads rosters and builds the cohort registry, exits on error.
func mustLoadRegistry(root string, cfg *config.Config, log *slog.Logger) *cohort.Registry {
	rosters, err := loadRosters(root, cfg, log)
	if err != nil {
		exitWithError(ExitDataError, "loading rosters: %v", err)
	}
	reg, err := buildRegistry(cfg, rosters)
	if err != nil {
		exitWithError(ExitConfigError, "building cohorts: %v", err)
	}
	return reg
}

// needsRebuild reports whether the query cache is missing, was keyed with a
// different name key, or predates the last write to pairs.jsonl.
func needsRebuild(db *storage.DB, pairsPath, nameKey string) (bool, error) {
	rebuiltAt, err := db.Meta(storage.MetaRebuiltAt)
	if err != nil {
		return false, err
	}
	if rebuiltAt == "" {
		return true, nil
	}

	key, err := db.Meta(storage.MetaNameKey)
	if err != nil {
		return false, err
	}
	if key != nameKey {
		return true, nil
	}

	at, err := time.Parse(time.RFC3339Nano, rebuiltAt)
	if err != nil {
		return true, nil
	}
	info, err := os.Stat(pairsPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.ModTime().Before(at), nil
}

// rebuildCache reloads the SQLite cache from pairs.jsonl.
func rebuildCache(db *storage.DB, root string, cfg *config.Config) (storage.RebuildResult, error) {
	norm, err := cfg.Normalizer()
	if err != nil {
		return storage.RebuildResult{}, err
	}
	return db.RebuildPairsFromJSONL(config.PairsPath(root), norm.Normalize, nameKey(cfg))
}

// nameKey returns the configured name key, defaulting like scholar.KeyFuncByName.
func nameKey(cfg *config.Config) string {
	if cfg.NameKey == "" {
		return scholar.KeyInitialSurname
	}
	return cfg.NameKey
}

// mustOpenPairs opens the query cache, rebuilding it first when stale.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenPairs(root string, cfg *config.Config, log *slog.Logger) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	stale, err := needsRebuild(db, config.PairsPath(root), nameKey(cfg))
	if err != nil {
		db.Close()
		exitWithError(ExitError, "checking database: %v", err)
	}
	if stale {
		res, err := rebuildCache(db, root, cfg)
		if err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding database: %v", err)
		}
		log.Info("rebuilt query cache", "records", res.Records, "pairs", res.Pairs)
	}
	return db
}

// newBuilder wires the registry and provider with configured layout options.
func newBuilder(cfg *config.Config, reg *cohort.Registry, db *storage.DB) app.Builder {
	return app.Builder{
		Registry: reg,
		Provider: db,
		Mode:     cfg.Mode(),
		Spring:   cfg.SpringOptions(),
	}
}
