// Package main provides the snet CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// logLevel overrides the global config log level
	logLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so Cobra errors (like missing required flags) are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snet",
	Short: "Co-authorship network dashboard for scholar cohorts",
	Long: `snet builds and serves co-authorship networks for scholar cohorts
(COP, IPOP, SURE).

Workflow:
  snet init       create .scholarnet/ with a default config
  snet scrape     collect co-authors for roster scholars from ASTA
  snet rebuild    rebuild the query cache from pairs.jsonl
  snet build      lay out and store whole-cohort graphs
  snet serve      run the dashboard

Collaborations are stored in git-versionable JSONL with an ephemeral SQLite
cache for queries. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for ASTA_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

// newLogger returns a stderr logger at the flag or global config level.
func newLogger() *slog.Logger {
	name := logLevel
	if name == "" {
		name = config.GetLogLevel()
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		exitWithError(ExitConfigError, "invalid log level %q", name)
	}
	return logging.New(os.Stderr, level)
}

// getStartingDirectory returns the directory to start searching for a repository.
// Checks global config data_path first, then current working directory.
func getStartingDirectory() (string, int) {
	if root := config.GetDataPath(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}
