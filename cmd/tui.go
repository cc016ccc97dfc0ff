package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/shared"
	"github.com/mstride/chartx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for chart browsing.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	chartName := cmd.String("chart")

	if r.engine == nil {
		return fmt.Errorf("%w: chart engine not initialized", shared.ErrServiceUnavailable)
	}
	if chartName == "" {
		chartName = r.defaultChart()
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

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/chartx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cache := repositories.NewSongCacheAdapter(repositories.NewSongRepository(db))
	r.engine.UseCache(cache)

	model := ui.NewModel(ctx,
		repositories.NewChartRepository(db),
		repositories.NewFavoriteRepository(db),
		r.engine, chartName, user.ID())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse cached charts interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "chart",
				Aliases: []string{"n"},
				Usage:   "Chart slug (default: configured chart)",
			},
		},
		Action: r.TUI,
	}
}
