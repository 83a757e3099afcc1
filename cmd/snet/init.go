package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a scholarnet repository in the current directory",
	Long: `Create .scholarnet/ with a default config.json, an empty pairs.jsonl
and a .gitignore that keeps the SQLite cache out of git.

Edit config.json to point each cohort at its roster CSV.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(cwd) {
		exitWithError(ExitConfigError, "already a scholarnet repository: %s", config.ScholarnetPath(cwd))
	}

	if err := initRepository(cwd); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized scholarnet repository in %s\n", config.ScholarnetPath(cwd))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.ScholarnetPath(cwd)})
	}
	return nil
}

// initRepository lays out .scholarnet under root.
func initRepository(root string) error {
	for _, dir := range []string{config.CachePath(root), config.SnapshotsPath(root)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := config.Default().Save(root); err != nil {
		return err
	}

	if err := os.WriteFile(config.PairsPath(root), nil, 0644); err != nil {
		return fmt.Errorf("creating pairs file: %w", err)
	}

	ignore := filepath.Join(config.ScholarnetPath(root), ".gitignore")
	if err := os.WriteFile(ignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
