package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mstride/chartx/internal/server"
	"github.com/mstride/chartx/internal/services"
	"github.com/mstride/chartx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for the chart provider.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	if config.Credentials.Provider.ClientID == "" || config.Credentials.Provider.ClientSecret == "" {
		return fmt.Errorf("%w: provider client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	providerService, err := services.NewProviderService(config.Credentials.Provider.Map())
	if err != nil {
		return fmt.Errorf("failed to create provider service: %w", err)
	}

	token, err := r.doOAuth(config, providerService, "authorization")
	if err != nil {
		return err
	}

	if err := config.Credentials.Provider.Update(token); err != nil {
		return fmt.Errorf("failed to update provider configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: chartx charts sync\n")

	return nil
}

// AuthStatus reports whether the configured provider session is usable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	status := map[string]any{
		"provider":      "none",
		"authenticated": false,
	}

	if r.provider != nil {
		status["provider"] = r.provider.Name()

		if err := r.provider.Authenticate(ctx, r.config.Credentials.Provider.Token()); err != nil {
			status["error"] = err.Error()
		} else if _, err := r.provider.GetCharts(ctx); err != nil {
			status["error"] = err.Error()
		} else {
			status["authenticated"] = true
		}
	}

	if useJSON {
		return r.writeJSON(status, pretty)
	}

	r.writePlain("Provider: %v\n", status["provider"])
	if status["authenticated"] == true {
		r.writePlain("Status: authenticated\n")
	} else {
		r.writePlain("Status: not authenticated\n")
		if errMsg, ok := status["error"]; ok {
			r.writePlain("Error: %v\n", errMsg)
		}
		r.writePlain("\nRun 'chartx auth login' or 'chartx setup provider' to authenticate.\n")
	}

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for provider %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// authCommand handles provider authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Provider authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with the chart provider via OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show authentication status for the configured provider",
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
				Action: r.AuthStatus,
			},
		},
	}
}
