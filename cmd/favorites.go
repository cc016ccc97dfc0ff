package main

import (
	"context"
	"fmt"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesToggle favorites a song, or removes an existing favorite.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	title := cmd.String("title")
	artist := cmd.String("artist")
	chartName := cmd.String("chart")
	week := cmd.String("week")

	if title == "" || artist == "" {
		return fmt.Errorf("%w: --title and --artist are required", shared.ErrMissingArgument)
	}
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

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	favorite := models.NewFavorite(0, user.ID(), title, artist, chartName, week)
	favorited, err := repositories.NewFavoriteRepository(db).Toggle(favorite)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}

	if favorited {
		r.writePlain("♥ Favorited %s - %s on %s\n", artist, title, chartName)
	} else {
		r.writePlain("♡ Removed %s - %s from favorites\n", artist, title)
	}

	return nil
}

// FavoritesList lists the profile user's favorites.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
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

	favorites, err := repositories.NewFavoriteRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list favorites: %w", err)
	}

	if useJSON {
		type favoriteJSON struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Artist    string `json:"artist"`
			ChartName string `json:"chart_name"`
			Week      string `json:"week,omitempty"`
		}
		out := make([]favoriteJSON, len(favorites))
		for i, f := range favorites {
			out[i] = favoriteJSON{
				ID:        f.ID(),
				Title:     f.Title(),
				Artist:    f.Artist(),
				ChartName: f.ChartName(),
				Week:      f.Week(),
			}
		}
		return r.writeJSON(out, pretty)
	}

	if len(favorites) == 0 {
		r.writePlain("No favorites yet. Use 'chartx favorites toggle' to add one.\n")
		return nil
	}

	r.writePlain("Found %d favorites:\n\n", len(favorites))
	for i, f := range favorites {
		r.writePlain("%d. %s - %s\n", i+1, f.Artist(), f.Title())
		r.writePlain("   Chart: %s\n", f.ChartName())
		if f.Week() != "" {
			r.writePlain("   Week: %s\n", f.Week())
		}
		r.writePlain("\n")
	}

	return nil
}

// favoritesCommand handles the profile user's favorite songs.
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "Track favorite songs across charts",
		Commands: []*cli.Command{
			{
				Name:  "toggle",
				Usage: "Favorite a song, or remove an existing favorite",
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
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Chart slug (default: configured chart)",
					},
					&cli.StringFlag{
						Name:    "week",
						Aliases: []string{"w"},
						Usage:   "Week the song was spotted (YYYY-MM-DD)",
					},
				},
				Action: r.FavoritesToggle,
			},
			{
				Name:  "list",
				Usage: "List favorite songs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "chart",
						Aliases: []string{"n"},
						Usage:   "Filter by chart slug",
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
				Action: r.FavoritesList,
			},
		},
	}
}
