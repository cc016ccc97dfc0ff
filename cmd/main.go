package main

import (
	"context"
	"errors"
	"os"

	"github.com/mstride/chartx/internal/services"
	"github.com/mstride/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	var providerService services.Service

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	provider := config.Credentials.Provider
	if provider.ClientID != "" && provider.ClientSecret != "" {
		if svc, err := services.NewProviderService(provider.Map()); err == nil {
			providerService = svc
		}
	} else if provider.HeadersPath != "" {
		if headers, err := shared.ParseCurlFile(provider.HeadersPath); err == nil {
			providerService = services.NewSessionProviderService(provider.BaseURL, headers.Map())
		} else {
			logger.Warnf("failed to load provider session headers: %v", err)
		}
	}

	searchService := services.NewAppleMusicService(config.Credentials.AppleMusic.BaseURL)
	apiService := services.NewAPIService(provider.BaseURL, nil)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Provider: providerService,
		Search:   searchService,
		API:      apiService,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "chartx",
		Usage:    "Browse music charts, track favorites & run prediction contests",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
