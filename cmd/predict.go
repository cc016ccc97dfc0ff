package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/shared"
	"github.com/mstride/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PredictAdd submits a prediction to an open contest.
func (r *Runner) PredictAdd(ctx context.Context, cmd *cli.Command) error {
	contestID := cmd.String("contest")
	typeArg := cmd.String("type")
	title := cmd.String("title")
	artist := cmd.String("artist")
	directionArg := cmd.String("direction")
	week := cmd.String("week")

	ptype, err := models.ParsePredictionType(typeArg)
	if err != nil {
		return err
	}
	direction, err := models.ParseDirection(directionArg)
	if err != nil {
		return err
	}
	week, err = shared.ParseWeek(week)
	if err != nil {
		return err
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	contest, err := repositories.NewContestRepository(db).Get(contestID)
	if err != nil {
		return err
	}
	if !contest.IsOpen(time.Now()) {
		return fmt.Errorf("%w: %s", shared.ErrContestClosed, contest.Name())
	}

	prediction := models.NewPrediction(0, user.ID(), contest.ID(), ptype, title, artist, direction, contest.ChartName(), week)
	if err := repositories.NewPredictionRepository(db).Create(prediction); err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	r.logger.Info("prediction submitted", "contest", contest.Name(), "type", ptype, "week", week)

	r.writePlain("✓ Prediction submitted to %s\n", contest.Name())
	r.writePlain("  %s: %s - %s", ptype, artist, title)
	if direction != models.DirectionNone {
		r.writePlain(" (%s)", direction)
	}
	r.writePlain("\n  Target week: %s on %s\n", week, contest.ChartName())

	return nil
}

// PredictList lists the profile user's predictions with optional filters.
func (r *Runner) PredictList(ctx context.Context, cmd *cli.Command) error {
	contestID := cmd.String("contest")
	typeArg := cmd.String("type")
	resultArg := cmd.String("result")
	chartName := cmd.String("chart")
	week := cmd.String("week")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	opts := tasks.FilterOptions{ChartName: chartName}

	if typeArg != "" {
		ptype, err := models.ParsePredictionType(typeArg)
		if err != nil {
			return err
		}
		opts.Type = ptype
	}
	if resultArg != "" {
		result, err := models.ParsePredictionResult(resultArg)
		if err != nil {
			return err
		}
		opts.Result = result
	}
	if week != "" {
		normalized, err := shared.ParseWeek(week)
		if err != nil {
			return err
		}
		opts.Week = normalized
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	criteria := map[string]any{"user_id": user.ID()}
	if contestID != "" {
		criteria["contest_id"] = contestID
	}

	predictions, err := repositories.NewPredictionRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list predictions: %w", err)
	}

	predictions = tasks.FilterPredictions(predictions, opts)

	if useJSON {
		type predictionJSON struct {
			ID        string `json:"id"`
			ContestID string `json:"contest_id"`
			Type      string `json:"type"`
			Title     string `json:"title"`
			Artist    string `json:"artist"`
			Direction string `json:"direction,omitempty"`
			ChartName string `json:"chart_name"`
			Week      string `json:"week"`
			Result    string `json:"result"`
		}
		out := make([]predictionJSON, len(predictions))
		for i, p := range predictions {
			out[i] = predictionJSON{
				ID:        p.ID(),
				ContestID: p.ContestID(),
				Type:      string(p.Type()),
				Title:     p.Title(),
				Artist:    p.Artist(),
				Direction: string(p.Direction()),
				ChartName: p.ChartName(),
				Week:      p.Week(),
				Result:    string(p.Result()),
			}
		}
		return r.writeJSON(out, pretty)
	}

	if len(predictions) == 0 {
		r.writePlain("No predictions found.\n")
		return nil
	}

	r.writePlain("Found %d predictions:\n\n", len(predictions))
	for i, p := range predictions {
		r.writePlain("%d. [%s] %s: %s - %s", i+1, p.Result(), p.Type(), p.Artist(), p.Title())
		if p.Direction() != models.DirectionNone {
			r.writePlain(" (%s)", p.Direction())
		}
		r.writePlain("\n   Chart: %s | Target week: %s\n", p.ChartName(), p.Week())
	}

	return nil
}

// PredictStats summarizes the profile user's prediction record.
func (r *Runner) PredictStats(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	criteria := map[string]any{"user_id": user.ID()}
	if chartName != "" {
		criteria["chart_name"] = chartName
	}

	predictions, err := repositories.NewPredictionRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list predictions: %w", err)
	}

	stats := tasks.ComputeStats(predictions)

	if useJSON {
		return r.writeJSON(stats, pretty)
	}

	r.writePlainHeader("Prediction Record")
	r.writePlain("Total: %d\n", stats.Total)
	r.writePlain("Correct: %d\n", stats.Correct)
	r.writePlain("Incorrect: %d\n", stats.Incorrect)
	r.writePlain("Pending: %d\n", stats.Pending)
	r.writePlain("Accuracy: %.1f%%\n", stats.Accuracy)

	if len(stats.ByType) > 0 {
		r.writePlain("\nBy type:\n")
		for _, ptype := range []models.PredictionType{models.PredictionEntry, models.PredictionMove, models.PredictionExit} {
			ts, ok := stats.ByType[ptype]
			if !ok {
				continue
			}
			r.writePlain("  %-6s %d total, %d correct, %d incorrect, %d pending (%.1f%%)\n",
				ptype, ts.Total, ts.Correct, ts.Incorrect, ts.Pending, ts.Accuracy)
		}
	}

	return nil
}

// predictCommand handles prediction submission and review.
func predictCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Submit and review chart predictions",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Submit a prediction to an open contest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "contest",
						Usage:    "Contest ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Prediction type (entry, move, or exit)",
						Required: true,
					},
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
					&cli.StringFlag{
						Name:    "direction",
						Aliases: []string{"d"},
						Usage:   "Movement direction for move predictions (up or down)",
					},
					&cli.StringFlag{
						Name:     "week",
						Aliases:  []string{"w"},
						Usage:    "Target chart week (YYYY-MM-DD, normalized to Saturday)",
						Required: true,
					},
				},
				Action: r.PredictAdd,
			},
			{
				Name:  "list",
				Usage: "List predictions with optional filters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "contest",
						Usage: "Filter by contest ID",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by type (entry, move, or exit)",
					},
					&cli.StringFlag{
						Name:  "result",
						Usage: "Filter by result (pending, correct, or incorrect)",
					},
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Filter by chart slug",
					},
					&cli.StringFlag{
						Name:    "week",
						Aliases: []string{"w"},
						Usage:   "Filter by target week",
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
				Action: r.PredictList,
			},
			{
				Name:  "stats",
				Usage: "Show prediction accuracy statistics",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Limit stats to one chart",
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
				Action: r.PredictStats,
			},
		},
	}
}
