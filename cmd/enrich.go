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

// Enrich attaches search API metadata to a cached chart week.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	week := cmd.String("week")
	limit := cmd.Int("limit")
	rateLimit := cmd.Float("rate")
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

	cache := repositories.NewSongCacheAdapter(repositories.NewSongRepository(db))
	r.engine.UseCache(cache)

	r.logger.Info("enriching chart", "chart", chart.Name, "week", chart.Week, "entries", len(chart.Entries))
	r.writePlain("Enriching %s week %s (%d entries)...\n\n", chart.Name, chart.Week, len(chart.Entries))

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			if update.Step == 0 {
				r.writePlain("🔍 %s\n", update.Message)
			} else {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Enrich(ctx, chart, tasks.EnrichOpts{
		RateLimit: rateLimit,
		Limit:     limit,
	}, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Enrichment Complete\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Enriched: %d songs\n", result.Enriched)
	r.writePlain("Cached: %d songs\n", result.Skipped)
	r.writePlain("Failed: %d songs\n", result.Failed)

	if len(result.Failures) > 0 {
		r.writePlain("\nFailed to enrich %d songs:\n", len(result.Failures))
		for _, f := range result.Failures {
			r.writePlain("  %d. %s - %s\n", f.Position, f.Artist, f.Title)
		}
	}

	return nil
}

// EnrichShow prints cached metadata for a song.
func (r *Runner) EnrichShow(ctx context.Context, cmd *cli.Command) error {
	title := cmd.String("title")
	artist := cmd.String("artist")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if title == "" || artist == "" {
		return fmt.Errorf("%w: --title and --artist are required", shared.ErrMissingArgument)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cache := repositories.NewSongCacheAdapter(repositories.NewSongRepository(db))

	key := shared.NormalizeSongKey(title, artist)
	info, ok := cache.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s - %s not in cache", shared.ErrSongNotFound, artist, title)
	}

	if useJSON {
		return r.writeJSON(info, pretty)
	}

	r.writePlain("%s - %s\n", info.Artist, info.Title)
	if info.Album != "" {
		r.writePlain("  Album: %s\n", info.Album)
	}
	if info.Genre != "" {
		r.writePlain("  Genre: %s\n", info.Genre)
	}
	if info.DurationMS > 0 {
		r.writePlain("  Duration: %s\n", shared.FormatDuration(info.DurationMS/1000))
	}
	if info.PreviewURL != "" {
		r.writePlain("  Preview: %s\n", info.PreviewURL)
	}

	return nil
}

// enrichCommand handles song metadata enrichment via the search API.
func enrichCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Attach search API metadata to cached chart weeks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "chart",
				Aliases: []string{"n"},
				Usage:   "Chart slug (default: configured chart)",
			},
			&cli.StringFlag{
				Name:    "week",
				Aliases: []string{"w"},
				Usage:   "Chart week (default: latest cached week)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Enrich only the top N positions",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Search API requests per second",
				Value: 2.0,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output result as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Enrich,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show cached metadata for a song",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Artist name",
						Required: true,
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
				Action: r.EnrichShow,
			},
		},
	}
}
