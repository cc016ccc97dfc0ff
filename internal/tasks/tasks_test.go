package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/services"
	"github.com/mstride/chartx/internal/shared"
)

type mockService struct {
	name          string
	refs          []models.ChartRef
	charts        map[string]*models.Chart // keyed by "{name}|{week}"
	getChartsErr  error
	getChartErr   error
	chartCalls    int
	authenticated bool
}

func chartKey(name, week string) string {
	return name + "|" + week
}

func (m *mockService) Name() string {
	return m.name
}

func (m *mockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.authenticated = true
	return nil
}

func (m *mockService) GetCharts(ctx context.Context) ([]models.ChartRef, error) {
	if m.getChartsErr != nil {
		return nil, m.getChartsErr
	}
	return m.refs, nil
}

func (m *mockService) GetChart(ctx context.Context, chartName, week string) (*models.Chart, error) {
	m.chartCalls++
	if m.getChartErr != nil {
		return nil, m.getChartErr
	}
	if chart, ok := m.charts[chartKey(chartName, week)]; ok {
		return chart, nil
	}
	return nil, fmt.Errorf("chart not found")
}

type mockSearcher struct {
	results     map[string]*models.SongInfo // keyed by normalized song key
	searchErr   error
	searchCalls int
}

func (m *mockSearcher) SearchSong(ctx context.Context, title, artist string) (*models.SongInfo, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if info, ok := m.results[shared.NormalizeSongKey(title, artist)]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: %q by %q", shared.ErrSongNotFound, title, artist)
}

type mockCache struct {
	entries  map[string]models.SongInfo
	storeErr error
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]models.SongInfo{}}
}

func (m *mockCache) Lookup(songKey string) (*models.SongInfo, bool) {
	if info, ok := m.entries[songKey]; ok {
		return &info, true
	}
	return nil, false
}

func (m *mockCache) Store(songKey string, info models.SongInfo) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.entries[songKey] = info
	return nil
}

type mockChartSource struct {
	charts map[string]*models.Chart
}

func (m *mockChartSource) Get(chartName, week string) (*models.Chart, error) {
	if chart, ok := m.charts[chartKey(chartName, week)]; ok {
		return chart, nil
	}
	return nil, fmt.Errorf("%w: %s week %s", shared.ErrChartNotFound, chartName, week)
}

// Mock API client for testing
type mockAPIClient struct {
	responses map[string]*services.APIResponse
	getErr    error
}

func (m *mockAPIClient) Get(ctx context.Context, path string) (*services.APIResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if resp, ok := m.responses[path]; ok {
		return resp, nil
	}
	return &services.APIResponse{
		StatusCode: 404,
		Body:       []byte("not found"),
	}, nil
}

func testWeek(week string, entries ...models.ChartEntry) *models.Chart {
	return &models.Chart{Name: "hot-100", Week: week, Entries: entries}
}

func TestChartEngine_Enrich(t *testing.T) {
	entries := []models.ChartEntry{
		{Position: 1, Title: "Flowers", Artist: "Miley Cyrus"},
		{Position: 2, Title: "Espresso", Artist: "Sabrina Carpenter"},
		{Position: 3, Title: "Unknown Song", Artist: "Unknown Artist"},
	}

	results := map[string]*models.SongInfo{
		"flowers|miley cyrus":        {SourceID: "111", Title: "Flowers", Artist: "Miley Cyrus", Album: "Endless Summer Vacation"},
		"espresso|sabrina carpenter": {SourceID: "222", Title: "Espresso", Artist: "Sabrina Carpenter"},
	}

	t.Run("enriches every entry and caches results", func(t *testing.T) {
		searcher := &mockSearcher{results: results}
		cache := newMockCache()

		engine := NewChartEngine(&mockService{}, searcher, nil)
		engine.UseCache(cache)

		chart := testWeek("2024-03-09", entries...)
		result, err := engine.Enrich(context.Background(), chart, EnrichOpts{RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Enriched != 2 {
			t.Errorf("expected 2 enriched, got %d", result.Enriched)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failure, got %d", result.Failed)
		}
		if len(result.Failures) != 1 || result.Failures[0].Position != 3 {
			t.Errorf("unexpected failures: %+v", result.Failures)
		}
		if info, ok := result.ByPosition[1]; !ok || info.Album != "Endless Summer Vacation" {
			t.Errorf("unexpected position 1 info: %+v", info)
		}
		if _, ok := cache.entries["flowers|miley cyrus"]; !ok {
			t.Error("expected successful result to be cached")
		}
		if _, ok := cache.entries["unknown song|unknown artist"]; ok {
			t.Error("failed searches must not be cached")
		}
	})

	t.Run("serves cached songs without calling the search API", func(t *testing.T) {
		searcher := &mockSearcher{results: results}
		cache := newMockCache()
		cache.entries["flowers|miley cyrus"] = models.SongInfo{SourceID: "cached", Title: "Flowers", Artist: "Miley Cyrus"}

		engine := NewChartEngine(&mockService{}, searcher, nil)
		engine.UseCache(cache)

		chart := testWeek("2024-03-09", entries[0], entries[1])
		result, err := engine.Enrich(context.Background(), chart, EnrichOpts{RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Skipped != 1 {
			t.Errorf("expected 1 skipped, got %d", result.Skipped)
		}
		if result.Enriched != 1 {
			t.Errorf("expected 1 enriched, got %d", result.Enriched)
		}
		if searcher.searchCalls != 1 {
			t.Errorf("expected 1 search call, got %d", searcher.searchCalls)
		}
		if result.ByPosition[1].SourceID != "cached" {
			t.Errorf("expected cached metadata, got %+v", result.ByPosition[1])
		}
	})

	t.Run("search errors do not stop the loop", func(t *testing.T) {
		searcher := &mockSearcher{searchErr: errors.New("search unavailable")}

		engine := NewChartEngine(&mockService{}, searcher, nil)

		chart := testWeek("2024-03-09", entries...)
		result, err := engine.Enrich(context.Background(), chart, EnrichOpts{RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Failed != 3 {
			t.Errorf("expected 3 failures, got %d", result.Failed)
		}
		if searcher.searchCalls != 3 {
			t.Errorf("expected every entry to be attempted, got %d calls", searcher.searchCalls)
		}
	})

	t.Run("respects the position limit", func(t *testing.T) {
		searcher := &mockSearcher{results: results}

		engine := NewChartEngine(&mockService{}, searcher, nil)

		chart := testWeek("2024-03-09", entries...)
		result, err := engine.Enrich(context.Background(), chart, EnrichOpts{RateLimit: 1000, Limit: 2}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Enriched != 2 || result.Failed != 0 {
			t.Errorf("expected 2 enriched and 0 failed, got %d/%d", result.Enriched, result.Failed)
		}
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		searcher := &mockSearcher{results: results}
		engine := NewChartEngine(&mockService{}, searcher, nil)

		chart := testWeek("2024-03-09", entries...)
		_, err := engine.Enrich(ctx, chart, EnrichOpts{}, nil)
		if err == nil {
			t.Fatal("expected error from cancelled context")
		}
	})

	t.Run("requires a search service", func(t *testing.T) {
		engine := NewChartEngine(&mockService{}, nil, nil)
		_, err := engine.Enrich(context.Background(), testWeek("2024-03-09", entries...), EnrichOpts{}, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("rejects an empty chart", func(t *testing.T) {
		engine := NewChartEngine(&mockService{}, &mockSearcher{}, nil)
		_, err := engine.Enrich(context.Background(), testWeek("2024-03-09"), EnrichOpts{}, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestChartEngine_Resolve(t *testing.T) {
	prev := testWeek("2024-03-02",
		models.ChartEntry{Position: 1, Title: "Flowers", Artist: "Miley Cyrus"},
		models.ChartEntry{Position: 2, Title: "Old Hit", Artist: "Fading Star"},
	)
	curr := testWeek("2024-03-09",
		models.ChartEntry{Position: 1, Title: "Espresso", Artist: "Sabrina Carpenter"},
		models.ChartEntry{Position: 2, Title: "Flowers", Artist: "Miley Cyrus"},
	)

	source := &mockChartSource{charts: map[string]*models.Chart{
		chartKey("hot-100", "2024-03-02"): prev,
		chartKey("hot-100", "2024-03-09"): curr,
	}}

	newContest := func() *models.Contest {
		contest := models.NewContest(1, "Test Contest", "hot-100", time.Now().Add(-48*time.Hour), time.Now().Add(-time.Hour))
		contest.SetID("contest-1")
		return contest
	}

	makePrediction := func(ptype models.PredictionType, title, artist string, dir models.Direction) *models.Prediction {
		p := models.NewPrediction(1, "user-1", "contest-1", ptype, title, artist, dir, "hot-100", "2024-03-09")
		p.SetID("pred-" + title)
		return p
	}

	engine := NewChartEngine(&mockService{}, nil, nil)

	t.Run("scores entry, move, and exit predictions", func(t *testing.T) {
		predictions := []*models.Prediction{
			makePrediction(models.PredictionEntry, "Espresso", "Sabrina Carpenter", models.DirectionNone), // debuted: correct
			makePrediction(models.PredictionEntry, "Flowers", "Miley Cyrus", models.DirectionNone),        // already charting: incorrect
			makePrediction(models.PredictionExit, "Old Hit", "Fading Star", models.DirectionNone),         // dropped off: correct
			makePrediction(models.PredictionMove, "Flowers", "Miley Cyrus", models.DirectionDown),         // 1 -> 2: correct
			makePrediction(models.PredictionMove, "Flowers", "Miley Cyrus", models.DirectionUp),           // 1 -> 2: incorrect
			makePrediction(models.PredictionMove, "Old Hit", "Fading Star", models.DirectionUp),           // left the chart: incorrect
		}

		contest := newContest()
		result, err := engine.Resolve(context.Background(), contest, predictions, source, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Resolved != 6 {
			t.Errorf("expected 6 resolved, got %d", result.Resolved)
		}
		if result.Correct != 3 || result.Incorrect != 3 {
			t.Errorf("expected 3 correct and 3 incorrect, got %d/%d", result.Correct, result.Incorrect)
		}
		if !contest.Resolved() {
			t.Error("expected contest to be marked resolved")
		}

		wants := []models.PredictionResult{
			models.ResultCorrect, models.ResultIncorrect, models.ResultCorrect,
			models.ResultCorrect, models.ResultIncorrect, models.ResultIncorrect,
		}
		for i, want := range wants {
			if got := predictions[i].Result(); got != want {
				t.Errorf("prediction %d: got %s, want %s", i, got, want)
			}
		}
	})

	t.Run("leaves predictions pending when the week is not cached", func(t *testing.T) {
		p := models.NewPrediction(1, "user-1", "contest-1", models.PredictionEntry,
			"Espresso", "Sabrina Carpenter", models.DirectionNone, "hot-100", "2024-06-01")
		p.SetID("pred-future")

		contest := newContest()
		result, err := engine.Resolve(context.Background(), contest, []*models.Prediction{p}, source, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Pending != 1 || result.Resolved != 0 {
			t.Errorf("expected 1 pending, got %+v", result)
		}
		if !p.Pending() {
			t.Error("prediction should remain pending")
		}
		if contest.Resolved() {
			t.Error("contest with pending predictions must not be resolved")
		}
	})

	t.Run("skips already-resolved predictions", func(t *testing.T) {
		p := makePrediction(models.PredictionEntry, "Espresso", "Sabrina Carpenter", models.DirectionNone)
		if err := p.Resolve(models.ResultIncorrect, time.Now()); err != nil {
			t.Fatalf("failed to pre-resolve: %v", err)
		}

		contest := newContest()
		result, err := engine.Resolve(context.Background(), contest, []*models.Prediction{p}, source, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Resolved != 0 {
			t.Errorf("expected nothing to resolve, got %d", result.Resolved)
		}
		if p.Result() != models.ResultIncorrect {
			t.Errorf("resolution must not change, got %s", p.Result())
		}
	})

	t.Run("rejects a resolved contest", func(t *testing.T) {
		contest := newContest()
		contest.SetResolved(true)

		_, err := engine.Resolve(context.Background(), contest, nil, source, nil)
		if !errors.Is(err, shared.ErrContestResolved) {
			t.Errorf("expected ErrContestResolved, got %v", err)
		}
	})
}

func TestChartEngine_Sync(t *testing.T) {
	chart := testWeek("2024-03-09", models.ChartEntry{Position: 1, Title: "Flowers", Artist: "Miley Cyrus"})

	t.Run("fetches by slug", func(t *testing.T) {
		provider := &mockService{
			charts: map[string]*models.Chart{chartKey("hot-100", "2024-03-09"): chart},
		}
		engine := NewChartEngine(provider, nil, nil)

		got, err := engine.Sync(context.Background(), "hot-100", "2024-03-09", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Week != "2024-03-09" {
			t.Errorf("unexpected week: %s", got.Week)
		}
	})

	t.Run("falls back to display name lookup", func(t *testing.T) {
		provider := &mockService{
			refs:   []models.ChartRef{{Slug: "hot-100", Name: "Hot 100"}},
			charts: map[string]*models.Chart{chartKey("hot-100", "2024-03-09"): chart},
		}
		engine := NewChartEngine(provider, nil, nil)

		got, err := engine.Sync(context.Background(), "Hot 100", "2024-03-09", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Name != "hot-100" {
			t.Errorf("unexpected chart: %s", got.Name)
		}
	})

	t.Run("unknown chart", func(t *testing.T) {
		provider := &mockService{refs: []models.ChartRef{{Slug: "hot-100", Name: "Hot 100"}}}
		engine := NewChartEngine(provider, nil, nil)

		_, err := engine.Sync(context.Background(), "no-such-chart", "", nil)
		if !errors.Is(err, shared.ErrChartNotFound) {
			t.Errorf("expected ErrChartNotFound, got %v", err)
		}
	})
}

func TestChartEngine_Dump(t *testing.T) {
	t.Run("collects endpoint data and errors", func(t *testing.T) {
		api := &mockAPIClient{responses: map[string]*services.APIResponse{
			"/health":                  {StatusCode: 200, IsJSON: true, JSONData: map[string]any{"status": "ok"}},
			"/v1/charts":               {StatusCode: 200, IsJSON: true, JSONData: []any{"hot-100"}},
			"/v1/charts/hot-100/weeks": {StatusCode: 200, IsJSON: true, JSONData: []any{"2024-03-09", "2024-03-02"}},
		}}
		engine := NewChartEngine(&mockService{}, nil, api)

		result, err := engine.Dump(context.Background(), "hot-100", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Health == nil {
			t.Error("expected health data")
		}
		if result.Charts == nil {
			t.Error("expected charts data")
		}
		if result.Archive == nil {
			t.Error("expected week archive data")
		}
		if len(result.Errors) != 1 {
			t.Errorf("expected 1 endpoint error, got %d", len(result.Errors))
		}
	})

	t.Run("requires an API client", func(t *testing.T) {
		engine := NewChartEngine(&mockService{}, nil, nil)
		_, err := engine.Dump(context.Background(), "hot-100", nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
