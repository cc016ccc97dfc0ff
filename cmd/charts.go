package main

import (
	"context"
	"fmt"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/shared"
	"github.com/mstride/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ChartsList lists the charts the provider publishes.
func (r *Runner) ChartsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.provider == nil {
		return fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("listing provider charts")

	refs, err := r.provider.GetCharts(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(refs, pretty)
	}

	r.writePlain("Found %d charts:\n\n", len(refs))
	for i, ref := range refs {
		r.writePlain("%d. %s\n", i+1, ref.Name)
		r.writePlain("   Slug: %s\n", ref.Slug)
		if ref.Description != "" {
			r.writePlain("   Description: %s\n", ref.Description)
		}
		r.writePlain("\n")
	}

	return nil
}

// ChartsShow prints a cached chart week from the local database.
func (r *Runner) ChartsShow(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	week := cmd.String("week")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	limit := cmd.Int("limit")

	if chartName == "" {
		chartName = r.defaultChart()
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	charts := repositories.NewChartRepository(db)

	var chart *models.Chart
	if week != "" {
		normalized, err := shared.ParseWeek(week)
		if err != nil {
			return err
		}
		if chart, err = charts.Get(chartName, normalized); err != nil {
			return err
		}
	} else {
		if chart, err = charts.Latest(chartName); err != nil {
			return err
		}
	}

	if useJSON {
		return r.writeJSON(chart, pretty)
	}

	entries := chart.Entries
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	r.writePlain("%s — week of %s (%d entries)\n\n", chart.Name, chart.Week, len(chart.Entries))
	for _, e := range entries {
		r.writePlain("%3d. [%s] %s - %s\n", e.Position, shared.FormatMovement(e.Position, e.LastWeek), e.Artist, e.Title)
		r.writePlain("     Peak: %d | Weeks on chart: %d\n", e.Peak, e.WeeksOn)
	}

	return nil
}

// ChartsWeeks lists the cached weeks for a chart.
func (r *Runner) ChartsWeeks(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if chartName == "" {
		chartName = r.defaultChart()
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	weeks, err := repositories.NewChartRepository(db).Weeks(chartName)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(weeks, pretty)
	}

	if len(weeks) == 0 {
		r.writePlain("No cached weeks for %s. Run 'chartx charts sync' first.\n", chartName)
		return nil
	}

	r.writePlain("Cached weeks for %s:\n\n", chartName)
	for _, week := range weeks {
		r.writePlain("  %s\n", week)
	}

	return nil
}

// ChartsSync fetches a chart week from the provider and caches it locally.
func (r *Runner) ChartsSync(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	week := cmd.String("week")

	if chartName == "" {
		chartName = r.defaultChart()
	}
	if week != "" {
		normalized, err := shared.ParseWeek(week)
		if err != nil {
			return err
		}
		week = normalized
	}

	r.logger.Info("syncing chart", "chart", chartName, "week", week)

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 10)
	go func() {
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	chart, err := r.engine.Sync(ctx, chartName, week, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	if err := repositories.NewChartRepository(db).Save(chart); err != nil {
		return fmt.Errorf("failed to cache chart: %w", err)
	}

	r.writePlain("\n✓ Cached %s week %s (%d entries)\n", chart.Name, chart.Week, len(chart.Entries))
	return nil
}

// chartsCommand handles chart browsing and syncing.
func chartsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "charts",
		Usage: "Browse and sync weekly charts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the charts the provider publishes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.ChartsList,
			},
			{
				Name:  "show",
				Usage: "Show a cached chart week",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Chart slug (default: configured chart)",
					},
					&cli.StringFlag{
						Name:    "week",
						Aliases: []string{"w"},
						Usage:   "Chart week (YYYY-MM-DD, normalized to Saturday)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Show only the top N positions",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.ChartsShow,
			},
			{
				Name:  "weeks",
				Usage: "List cached weeks for a chart",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Chart slug (default: configured chart)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.ChartsWeeks,
			},
			{
				Name:  "sync",
				Usage: "Fetch a chart week from the provider and cache it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Chart slug (default: configured chart)",
					},
					&cli.StringFlag{
						Name:    "week",
						Aliases: []string{"w"},
						Usage:   "Chart week (YYYY-MM-DD, normalized to Saturday)",
					},
				},
				Action: r.ChartsSync,
			},
		},
	}
}
