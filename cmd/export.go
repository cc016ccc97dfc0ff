package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/shared"
	"github.com/mstride/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export exports chart weeks to files using a rate-limited worker pool.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	weeksArg := cmd.String("weeks")
	format := cmd.String("format")
	outputDir := cmd.String("output")
	numWorkers := cmd.Int("workers")
	rateLimit := cmd.Float("rate")

	if r.provider == nil {
		return fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}
	if chartName == "" {
		chartName = r.defaultChart()
	}

	switch format {
	case "json", "csv", "markdown", "txt":
	default:
		return fmt.Errorf("%w: format %q (must be json, csv, markdown, or txt)", shared.ErrInvalidFlag, format)
	}

	var weeks []string
	if weeksArg != "" {
		for _, w := range strings.Split(weeksArg, ",") {
			normalized, err := shared.ParseWeek(w)
			if err != nil {
				return err
			}
			weeks = append(weeks, normalized)
		}
	} else {
		db, err := r.openDB()
		if err != nil {
			return err
		}
		cached, err := repositories.NewChartRepository(db).Weeks(chartName)
		db.Close()
		if err != nil {
			return err
		}
		weeks = cached
	}

	if len(weeks) == 0 {
		return fmt.Errorf("%w: no weeks to export (use --weeks or sync some first)", shared.ErrMissingArgument)
	}

	r.logger.Info("starting bulk export", "chart", chartName, "weeks", len(weeks), "format", format)
	r.writePlain("Exporting %d weeks of %s as %s...\n\n", len(weeks), chartName, format)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, r.provider, chartName, weeks, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  outputDir,
		NumWorkers: numWorkers,
		RateLimit:  rateLimit,
	})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Export Complete\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Exported: %d/%d weeks\n", result.SuccessfulExports, result.TotalWeeks)
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d weeks:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.Week, res.Error)
			}
		}
	}

	return nil
}

// exportCommand handles bulk chart exports.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export chart weeks to files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "chart",
				Aliases: []string{"n"},
				Usage:   "Chart slug (default: configured chart)",
			},
			&cli.StringFlag{
				Name:    "weeks",
				Aliases: []string{"w"},
				Usage:   "Comma-separated weeks to export (default: all cached weeks)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (json, csv, markdown, or txt)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: chart_export_{timestamp})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent export workers (max 10)",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Provider requests per second",
				Value: 5.0,
			},
		},
		Action: r.Export,
	}
}
