package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/storage"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from pairs.jsonl",
	Long: `Rebuild the SQLite query cache from the JSONL source file, keying
authors with the configured name key.

Use this after pulling changes from git, after changing name_key or
name_overrides, or if the cache becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResponse is the response for the rebuild command.
type RebuildResponse struct {
	Status string `json:"status"`
	storage.RebuildResult
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	res, err := rebuildCache(db, repoRoot, cfg)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding pairs database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d records, %d distinct pairs", res.Records, res.Pairs)
		if res.Collapsed > 0 {
			fmt.Printf(" (%d records collapsed to a single author)", res.Collapsed)
		}
		fmt.Println()
	} else {
		outputJSON(RebuildResponse{Status: "rebuilt", RebuildResult: res})
	}
	return nil
}
