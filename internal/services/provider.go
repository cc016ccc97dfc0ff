// Chart provider implementation of [Service]
//
// Talks to the ChartWatch JSON API. Supports OAuth2 (authorization code)
// and imported browser sessions for accounts without API credentials.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
	"golang.org/x/oauth2"
)

const defaultProviderBaseURL = "https://api.chartwatch.dev"

// providerChartRef is the provider's chart listing payload.
type providerChartRef struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// providerEntry is one ranked row in the provider's chart payload.
type providerEntry struct {
	Rank       int    `json:"rank"`
	LastWeek   int    `json:"last_week"`
	PeakRank   int    `json:"peak_rank"`
	WeeksOn    int    `json:"weeks_on_chart"`
	SongTitle  string `json:"song_title"`
	ArtistName string `json:"artist_name"`
}

// providerChart is the provider's chart week payload.
type providerChart struct {
	Slug    string          `json:"slug"`
	Week    string          `json:"week"`
	Entries []providerEntry `json:"entries"`
}

// ProviderService implements the Service interface for the chart provider.
// Uses [oauth2] for authentication, or a set of captured browser headers
// imported from a cURL command.
type ProviderService struct {
	baseURL     string
	config      *oauth2.Config
	token       *oauth2.Token
	headers     map[string]string
	httpClient  *http.Client
	credentials map[string]string
}

// NewProviderService creates a provider client with the given OAuth2 credentials.
// credentials["base_url"] overrides the default API host.
func NewProviderService(credentials map[string]string) (*ProviderService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	baseURL := credentials["base_url"]
	if baseURL == "" {
		baseURL = defaultProviderBaseURL
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"charts:read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  baseURL + "/oauth/authorize",
			TokenURL: baseURL + "/oauth/token",
		},
	}

	return &ProviderService{
		baseURL:     baseURL,
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
	}, nil
}

// NewSessionProviderService creates a provider client that authenticates with
// captured browser headers instead of OAuth2.
func NewSessionProviderService(baseURL string, headers map[string]string) *ProviderService {
	if baseURL == "" {
		baseURL = defaultProviderBaseURL
	}

	return &ProviderService{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: http.DefaultClient,
	}
}

// Authenticate performs OAuth2 authentication with the provider. Expects either
// an "access_token" or "auth_code" in credentials.
func (p *ProviderService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if p.headers != nil {
		return nil
	}

	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		p.token = &oauth2.Token{AccessToken: accessToken}
		if refresh, ok := credentials["refresh_token"]; ok && refresh != "" {
			p.token.RefreshToken = refresh
		}
		p.httpClient = p.config.Client(ctx, p.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := p.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		p.token = token
		p.httpClient = p.config.Client(ctx, p.token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

func (p *ProviderService) Name() string {
	return "ChartWatch"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (p *ProviderService) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying OAuth2 config for the callback server.
func (p *ProviderService) GetOAuthConfig() *oauth2.Config {
	return p.config
}

// Token returns the current OAuth2 token, or nil before authentication.
func (p *ProviderService) Token() *oauth2.Token {
	return p.token
}

// doRequest performs an authenticated HTTP request to the provider API.
func (p *ProviderService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if p.token == nil && p.headers == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := p.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if p.token != nil {
		req.Header.Set("Authorization", "Bearer "+p.token.AccessToken)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrChartNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetCharts retrieves the charts the provider publishes.
//
// Calls GET /v1/charts.
func (p *ProviderService) GetCharts(ctx context.Context) ([]models.ChartRef, error) {
	var refs []providerChartRef
	if err := p.doRequest(ctx, http.MethodGet, "/v1/charts", &refs); err != nil {
		return nil, err
	}

	charts := make([]models.ChartRef, len(refs))
	for i, ref := range refs {
		charts[i] = models.ChartRef{
			Slug:        ref.Slug,
			Name:        ref.DisplayName,
			Description: ref.Description,
		}
	}

	return charts, nil
}

// GetChart retrieves a chart for a specific week. An empty week requests
// the latest published week.
//
// Calls GET /v1/charts/{slug}?week={week}.
func (p *ProviderService) GetChart(ctx context.Context, chartName, week string) (*models.Chart, error) {
	if strings.TrimSpace(chartName) == "" {
		return nil, fmt.Errorf("%w: chart name", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/v1/charts/%s", url.PathEscape(chartName))
	if week != "" {
		endpoint += "?week=" + url.QueryEscape(week)
	}

	var pc providerChart
	if err := p.doRequest(ctx, http.MethodGet, endpoint, &pc); err != nil {
		return nil, err
	}

	chart := &models.Chart{
		Name:    pc.Slug,
		Week:    pc.Week,
		Entries: make([]models.ChartEntry, len(pc.Entries)),
	}

	for i, e := range pc.Entries {
		chart.Entries[i] = models.ChartEntry{
			Position: e.Rank,
			LastWeek: e.LastWeek,
			Peak:     e.PeakRank,
			WeeksOn:  e.WeeksOn,
			Title:    e.SongTitle,
			Artist:   e.ArtistName,
		}
	}

	return chart, nil
}
