package services

import (
	"context"

	"github.com/mstride/chartx/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the interface for chart providers that publish ranked weekly charts.
type Service interface {
	// Authenticate performs OAuth or session authentication with the provider.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetCharts retrieves the charts the provider publishes.
	GetCharts(ctx context.Context) ([]models.ChartRef, error)

	// GetChart retrieves a chart for a specific week.
	// An empty week requests the latest published week.
	GetChart(ctx context.Context, chartName, week string) (*models.Chart, error)

	// Name returns the name of the provider (e.g., "ChartWatch")
	Name() string
}

// OAuthService is implemented by providers that authenticate users
// through the OAuth2 authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig returns the OAuth2 config for the callback server.
	GetOAuthConfig() *oauth2.Config
}
