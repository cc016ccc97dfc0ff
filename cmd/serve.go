package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mstride/chartx/internal/repositories"
	"github.com/mstride/chartx/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the local read API over the cached chart database.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	port := cmd.Int("port")

	if host == "" {
		host = r.config.Server.Host
	}
	if port == 0 {
		port = r.config.Server.Port
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	handler := server.NewChartHandler(
		repositories.NewChartRepository(db),
		repositories.NewPredictionRepository(db),
	)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	r.logger.Info("starting read API", "addr", addr)
	r.writePlain("Serving chart read API at http://%s\n", addr)
	r.writePlain("Endpoints: /health /api/charts/{chart} /api/predictions /api/stats\n")
	r.writePlain("Press Ctrl+C to stop.\n")

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	return httpServer.Shutdown(context.Background())
}

// serveCommand runs the local HTTP read API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the cached charts over a local HTTP read API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind host (default: configured host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Bind port (default: configured port)",
			},
		},
		Action: r.Serve,
	}
}
