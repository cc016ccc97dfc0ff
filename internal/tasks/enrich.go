package tasks

import (
	"context"
	"fmt"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
	"golang.org/x/time/rate"
)

// EnrichOpts contains configuration for chart enrichment.
type EnrichOpts struct {
	RateLimit float64 // Search API requests per second (default: 2)
	Limit     int     // Enrich only the top N positions (0 = all)
}

// Enrich attaches search API metadata to every entry of a chart week.
//
// Songs already present in the cache are served from it without touching the
// search API or the rate limiter. Each remaining song waits on the limiter
// before its search request, keeping the loop inside the API's documented
// request budget. Failures are recorded and skipped; the loop only stops
// early when the context is cancelled.
func (e *ChartEngine) Enrich(ctx context.Context, chart *models.Chart, opts EnrichOpts, progress chan<- ProgressUpdate) (*EnrichResult, error) {
	if e.search == nil {
		return nil, fmt.Errorf("%w: search service not initialized", shared.ErrServiceUnavailable)
	}
	if chart == nil || len(chart.Entries) == 0 {
		return nil, fmt.Errorf("%w: chart has no entries", shared.ErrInvalidInput)
	}

	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	entries := chart.Entries
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}

	result := &EnrichResult{
		ChartName:  chart.Name,
		Week:       chart.Week,
		ByPosition: make(map[int]models.SongInfo, len(entries)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	total := len(entries)

	e.sendProgress(progress, enrichSongUpdate(0, total, nil))

	for i := range entries {
		entry := &entries[i]
		key := shared.NormalizeSongKey(entry.Title, entry.Artist)

		if e.cache != nil {
			if info, ok := e.cache.Lookup(key); ok {
				result.ByPosition[entry.Position] = *info
				result.Skipped++
				e.sendProgress(progress, enrichSkippedUpdate(i+1, total, entry))
				continue
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("enrichment interrupted: %w", err)
		}

		e.sendProgress(progress, enrichSongUpdate(i+1, total, entry))

		info, err := e.search.SearchSong(ctx, entry.Title, entry.Artist)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, EnrichFailure{
				Position: entry.Position,
				Title:    entry.Title,
				Artist:   entry.Artist,
				Err:      err,
			})
			e.sendProgress(progress, enrichFailedUpdate(i+1, total, entry, err))
			continue
		}

		result.ByPosition[entry.Position] = *info
		result.Enriched++

		if e.cache != nil {
			if err := e.cache.Store(key, *info); err != nil {
				e.sendProgress(progress, cacheFailedUpdate(i+1, total, entry, err))
			}
		}
	}

	return result, nil
}
