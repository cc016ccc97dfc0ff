// package tasks implements chart operations: enrichment, prediction resolution, and data dumps.
//
// The core abstraction is ChartEngine, which orchestrates chart fetching, song enrichment,
// and contest resolution. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/services"
	"github.com/mstride/chartx/internal/shared"
)

// EnrichFailure records a song the enrichment loop could not resolve.
type EnrichFailure struct {
	Position int    // Chart position of the failed entry
	Title    string // Song title from the chart
	Artist   string // Artist name from the chart
	Err      error  // Search or cache error
}

// EnrichResult contains all data from an enrichment run over one chart week.
type EnrichResult struct {
	ChartName  string                  // Chart that was enriched
	Week       string                  // Week that was enriched
	ByPosition map[int]models.SongInfo // Enriched metadata keyed by chart position
	Enriched   int                     // Songs fetched from the search API
	Skipped    int                     // Songs served from the cache
	Failed     int                     // Songs that could not be enriched
	Failures   []EnrichFailure         // Details for each failed song
}

// ResolveResult contains the outcome of resolving a contest's predictions.
type ResolveResult struct {
	ContestID string               // Contest that was resolved
	Resolved  int                  // Predictions resolved this run
	Correct   int                  // Predictions scored correct this run
	Incorrect int                  // Predictions scored incorrect this run
	Pending   int                  // Predictions left pending (missing chart data)
	Updated   []*models.Prediction // Predictions whose state changed
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains all data fetched from the provider API.
type DumpResult struct {
	Health      any              // Health status
	Charts      any              // Published charts
	LatestChart any              // Latest week of the default chart
	Archive     any              // Published weeks of the default chart
	Errors      []EndpointResult // Failed endpoint fetches
}

// DumpData is the serializable form of a DumpResult.
type DumpData struct {
	Health      any   `json:"health"`
	Charts      any   `json:"charts,omitempty"`
	LatestChart any   `json:"latest_chart,omitempty"`
	Archive     any   `json:"archive,omitempty"`
	Errors      []any `json:"errors,omitempty"`
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}

// SongSearcher searches an external catalog for song metadata.
// Implemented by services.AppleMusicService.
type SongSearcher interface {
	SearchSong(ctx context.Context, title, artist string) (*models.SongInfo, error)
}

// SongCacher caches enriched song metadata by normalized song key.
// Implemented by repositories.SongCacheAdapter.
type SongCacher interface {
	Lookup(songKey string) (*models.SongInfo, bool)
	Store(songKey string, info models.SongInfo) error
}

// ChartSource loads cached chart weeks.
// Implemented by repositories.ChartRepository.
type ChartSource interface {
	Get(chartName, week string) (*models.Chart, error)
}

// APIClient defines the interface for making raw API requests to the provider.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// ChartEngine orchestrates chart enrichment, prediction resolution, and data dumps.
// Contains dependencies on the chart provider, the song search API, and the raw API client.
type ChartEngine struct {
	provider services.Service
	search   SongSearcher
	api      APIClient
	cache    SongCacher
}

// NewChartEngine creates a new ChartEngine with the provided services.
func NewChartEngine(provider services.Service, search SongSearcher, api APIClient) *ChartEngine {
	return &ChartEngine{
		provider: provider,
		search:   search,
		api:      api,
	}
}

// UseCache attaches a song cache so enrichment can skip already-fetched songs.
func (e *ChartEngine) UseCache(cache SongCacher) {
	e.cache = cache
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ChartEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Sync fetches a chart week from the provider, falling back to a name lookup
// when the given slug does not resolve directly.
func (e *ChartEngine) Sync(ctx context.Context, chartName, week string, progress chan<- ProgressUpdate) (*models.Chart, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("%w: provider not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchChartUpdate(1, 1, chartName, week))

	chart, err := e.provider.GetChart(ctx, chartName, week)
	if err != nil {
		refs, refsErr := e.provider.GetCharts(ctx)
		if refsErr != nil {
			return nil, fmt.Errorf("%w: failed to list charts: %v", shared.ErrAPIRequest, refsErr)
		}

		var matchedSlug string
		for _, ref := range refs {
			if ref.Name == chartName {
				matchedSlug = ref.Slug
				break
			}
		}

		if matchedSlug == "" {
			return nil, fmt.Errorf("%w: no chart found with name '%s'", shared.ErrChartNotFound, chartName)
		}

		chart, err = e.provider.GetChart(ctx, matchedSlug, week)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch chart: %v", shared.ErrAPIRequest, err)
		}
	}

	e.sendProgress(progress, foundChartUpdate(1, 1, chart))
	return chart, nil
}

// Dump fetches all data from the provider API.
func (e *ChartEngine) Dump(ctx context.Context, defaultChart string, progress chan<- ProgressUpdate) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{
		Errors: []EndpointResult{},
	}

	endpoints := []endpointOperation{
		{name: "health", path: "/health", target: &result.Health, phase: FetchHealth, message: "Fetching health status..."},
		{name: "charts", path: "/v1/charts", target: &result.Charts, phase: FetchCharts, message: "Fetching charts..."},
		{name: "latest_chart", path: "/v1/charts/" + defaultChart, target: &result.LatestChart, phase: FetchChart, message: "Fetching latest chart week..."},
		{name: "archive", path: "/v1/charts/" + defaultChart + "/weeks", target: &result.Archive, phase: FetchArchive, message: "Fetching week archive..."},
	}

	totalSteps := len(endpoints)

	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		resp, err := e.api.Get(ctx, endpoint.path)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			} else {
				errMsg = fmt.Sprintf("status %d", resp.StatusCode)
			}
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    fmt.Errorf("%s", errMsg),
			})
		} else {
			*endpoint.target = resp.JSONData
		}
	}

	return result, nil
}
