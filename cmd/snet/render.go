package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/app"
	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/storage"
	"github.com/matsen/scholarnet/internal/viz"
)

var (
	renderAuthor1 string
	renderAuthor2 string
	renderCohort  string
	renderFormat  string
	renderOutput  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one network figure",
	Long: `Render the figure the dashboard would show for a selection.

With no authors the selected cohort's precomputed graph is rendered. With
one or two authors, their co-authorship network is rendered with the
selected authors highlighted.

Formats:
  json     Plotly figure JSON (default)
  html     Standalone page drawing the figure with plotly.js
  echarts  Standalone go-echarts page

Examples:
  snet render --cohort IPOP --format html -o ipop.html
  snet render --author1 "Jane Doe" --author2 "Bo Smith"`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderAuthor1, "author1", "", "First selected author")
	renderCmd.Flags().StringVar(&renderAuthor2, "author2", "", "Second selected author")
	renderCmd.Flags().StringVar(&renderCohort, "cohort", "", "Cohort graph (default from config)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "Output format: json, html, echarts")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	switch renderFormat {
	case "json", "html", "echarts":
	default:
		exitWithError(ExitError, "unknown format %q (want json, html, or echarts)", renderFormat)
	}

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	ctx := context.Background()
	a, cleanup := mustNewApp(ctx, repoRoot, cfg, newLogger(), true)
	defer cleanup()

	fig, err := a.Figure(ctx, app.Selection{
		Author1: renderAuthor1,
		Author2: renderAuthor2,
		Cohort:  renderCohort,
	})
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var w io.Writer = os.Stdout
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			exitWithError(ExitError, "creating output file: %v", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeFigure(w, fig, renderFormat); err != nil {
		exitWithError(ExitError, "rendering figure: %v", err)
	}

	if renderOutput != "" && humanOutput {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", renderOutput)
	}
	return nil
}

// writeFigure encodes fig in the named format.
func writeFigure(w io.Writer, fig *viz.Figure, format string) error {
	switch format {
	case "html":
		page, err := viz.GenerateHTML(fig, viz.HTMLOptions{})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case "echarts":
		return viz.RenderECharts(w, fig, viz.EChartsOptions{PageTitle: fig.Title})
	default:
		data, err := fig.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
}

// mustNewApp loads rosters, the query cache and snapshots into an app
// context. The returned cleanup closes the cache.
func mustNewApp(ctx context.Context, repoRoot string, cfg *config.Config, log *slog.Logger, buildMissing bool) (*app.App, func()) {
	reg := mustLoadRegistry(repoRoot, cfg, log)
	db := mustOpenPairs(repoRoot, cfg, log)

	a, err := app.New(ctx, app.Deps{
		Registry:      reg,
		Provider:      db,
		Snapshots:     storage.SnapshotDir(config.SnapshotsPath(repoRoot)),
		Mode:          cfg.Mode(),
		Spring:        cfg.SpringOptions(),
		DefaultCohort: cfg.DefaultCohortName(),
		BuildMissing:  buildMissing,
		Logger:        log,
	})
	if err != nil {
		db.Close()
		exitWithError(ExitDataError, "%v", err)
	}
	return a, func() { db.Close() }
}
