package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/shared"
	"github.com/mstride/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ContestCreate opens a new prediction contest for a chart.
func (r *Runner) ContestCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	chartName := cmd.String("chart")
	opensArg := cmd.String("opens")
	closesArg := cmd.String("closes")

	if chartName == "" {
		chartName = r.defaultChart()
	}

	opensAt := time.Now()
	if opensArg != "" {
		t, err := time.Parse("2006-01-02", opensArg)
		if err != nil {
			return fmt.Errorf("%w: --opens %q (expected YYYY-MM-DD)", shared.ErrInvalidArgument, opensArg)
		}
		opensAt = t
	}

	closesAt, err := time.Parse("2006-01-02", closesArg)
	if err != nil {
		return fmt.Errorf("%w: --closes %q (expected YYYY-MM-DD)", shared.ErrInvalidArgument, closesArg)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	contest := models.NewContest(0, name, chartName, opensAt, closesAt)
	if err := repositories.NewContestRepository(db).Create(contest); err != nil {
		return fmt.Errorf("failed to create contest: %w", err)
	}

	r.logger.Info("contest created", "name", name, "chart", chartName)

	r.writePlain("✓ Contest created: %s\n", contest.Name())
	r.writePlain("  ID: %s\n", contest.ID())
	r.writePlain("  Chart: %s\n", contest.ChartName())
	r.writePlain("  Window: %s → %s\n", contest.OpensAt().Format("2006-01-02"), contest.ClosesAt().Format("2006-01-02"))

	return nil
}

// ContestList lists contests with optional filters.
func (r *Runner) ContestList(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")
	resolvedOnly := cmd.Bool("resolved")
	openOnly := cmd.Bool("open")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if chartName != "" {
		criteria["chart_name"] = chartName
	}
	if resolvedOnly {
		criteria["resolved"] = true
	} else if openOnly {
		criteria["resolved"] = false
	}

	contests, err := repositories.NewContestRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list contests: %w", err)
	}

	if openOnly {
		now := time.Now()
		open := contests[:0]
		for _, c := range contests {
			if c.IsOpen(now) {
				open = append(open, c)
			}
		}
		contests = open
	}

	if useJSON {
		type contestJSON struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			ChartName string `json:"chart_name"`
			OpensAt   string `json:"opens_at"`
			ClosesAt  string `json:"closes_at"`
			Resolved  bool   `json:"resolved"`
		}
		out := make([]contestJSON, len(contests))
		for i, c := range contests {
			out[i] = contestJSON{
				ID:        c.ID(),
				Name:      c.Name(),
				ChartName: c.ChartName(),
				OpensAt:   c.OpensAt().Format(time.RFC3339),
				ClosesAt:  c.ClosesAt().Format(time.RFC3339),
				Resolved:  c.Resolved(),
			}
		}
		return r.writeJSON(out, pretty)
	}

	if len(contests) == 0 {
		r.writePlain("No contests found. Use 'chartx contest create' to open one.\n")
		return nil
	}

	now := time.Now()
	r.writePlain("Found %d contests:\n\n", len(contests))
	for i, c := range contests {
		status := "closed"
		if c.Resolved() {
			status = "resolved"
		} else if c.IsOpen(now) {
			status = "open"
		}
		r.writePlain("%d. %s [%s]\n", i+1, c.Name(), status)
		r.writePlain("   ID: %s\n", c.ID())
		r.writePlain("   Chart: %s\n", c.ChartName())
		r.writePlain("   Window: %s → %s\n\n", c.OpensAt().Format("2006-01-02"), c.ClosesAt().Format("2006-01-02"))
	}

	return nil
}

// ContestResolve scores a contest's pending predictions against cached chart weeks.
func (r *Runner) ContestResolve(ctx context.Context, cmd *cli.Command) error {
	contestID := cmd.String("contest")

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	contests := repositories.NewContestRepository(db)
	predictionRepo := repositories.NewPredictionRepository(db)
	charts := repositories.NewChartRepository(db)

	contest, err := contests.Get(contestID)
	if err != nil {
		return err
	}

	predictions, err := predictionRepo.List(map[string]any{"contest_id": contest.ID()})
	if err != nil {
		return fmt.Errorf("failed to list contest predictions: %w", err)
	}

	r.logger.Info("resolving contest", "contest", contest.Name(), "predictions", len(predictions))
	r.writePlain("Resolving %s (%d predictions)...\n\n", contest.Name(), len(predictions))

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	result, err := r.engine.Resolve(ctx, contest, predictions, charts, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	for _, p := range result.Updated {
		if err := predictionRepo.Update(p); err != nil {
			return fmt.Errorf("failed to persist prediction %s: %w", p.ID(), err)
		}
	}

	if contest.Resolved() {
		if err := contests.Update(contest); err != nil {
			return fmt.Errorf("failed to persist contest: %w", err)
		}
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Resolution Complete\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Resolved: %d\n", result.Resolved)
	r.writePlain("Correct: %d\n", result.Correct)
	r.writePlain("Incorrect: %d\n", result.Incorrect)

	if result.Pending > 0 {
		r.writePlain("Still pending: %d (missing cached chart weeks)\n", result.Pending)
		r.writePlain("\nRun 'chartx charts sync --week <week>' for the missing weeks, then re-run.\n")
	} else {
		r.writePlain("\n✓ Contest fully resolved.\n")
	}

	return nil
}

// ContestStandings ranks participants in a contest by prediction accuracy.
func (r *Runner) ContestStandings(ctx context.Context, cmd *cli.Command) error {
	contestID := cmd.String("contest")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	contest, err := repositories.NewContestRepository(db).Get(contestID)
	if err != nil {
		return err
	}

	predictions, err := repositories.NewPredictionRepository(db).List(map[string]any{"contest_id": contest.ID()})
	if err != nil {
		return fmt.Errorf("failed to list contest predictions: %w", err)
	}

	byUser := map[string][]*models.Prediction{}
	for _, p := range predictions {
		byUser[p.UserID()] = append(byUser[p.UserID()], p)
	}

	type standing struct {
		Name     string                 `json:"name"`
		UserID   string                 `json:"user_id"`
		Stats    *tasks.PredictionStats `json:"stats"`
		resolved int
	}

	users := repositories.NewUserRepository(db)
	standings := make([]standing, 0, len(byUser))
	for userID, preds := range byUser {
		name := userID
		if user, err := users.Get(userID); err == nil {
			name = user.Name()
		}
		stats := tasks.ComputeStats(preds)
		standings = append(standings, standing{
			Name:     name,
			UserID:   userID,
			Stats:    stats,
			resolved: stats.Correct + stats.Incorrect,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Stats.Accuracy != standings[j].Stats.Accuracy {
			return standings[i].Stats.Accuracy > standings[j].Stats.Accuracy
		}
		return standings[i].Stats.Correct > standings[j].Stats.Correct
	})

	if useJSON {
		return r.writeJSON(standings, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Standings: %s", contest.Name()))
	if len(standings) == 0 {
		r.writePlain("No predictions submitted yet.\n")
		return nil
	}

	for i, s := range standings {
		r.writePlain("%d. %s — %.1f%% (%d/%d correct, %d pending)\n",
			i+1, s.Name, s.Stats.Accuracy, s.Stats.Correct, s.resolved, s.Stats.Pending)
	}

	return nil
}

// contestCommand handles prediction contest management.
func contestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "contest",
		Usage: "Manage prediction contests",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Open a new prediction contest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Contest name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Chart slug (default: configured chart)",
					},
					&cli.StringFlag{
						Name:  "opens",
						Usage: "Submission window open date (YYYY-MM-DD, default: now)",
					},
					&cli.StringFlag{
						Name:     "closes",
						Usage:    "Submission window close date (YYYY-MM-DD)",
						Required: true,
					},
				},
				Action: r.ContestCreate,
			},
			{
				Name:  "list",
				Usage: "List contests",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Filter by chart slug",
					},
					&cli.BoolFlag{
						Name:  "resolved",
						Usage: "Show only resolved contests",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Show only contests currently accepting predictions",
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
				Action: r.ContestList,
			},
			{
				Name:  "resolve",
				Usage: "Score a contest's predictions against cached chart weeks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "contest",
						Usage:    "Contest ID",
						Required: true,
					},
				},
				Action: r.ContestResolve,
			},
			{
				Name:  "standings",
				Usage: "Rank contest participants by prediction accuracy",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "contest",
						Usage:    "Contest ID",
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
				Action: r.ContestStandings,
			},
		},
	}
}
