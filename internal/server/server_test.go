package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
	"golang.org/x/oauth2"
)

func TestBasicRouter(t *testing.T) {
	t.Run("filters by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected GET response: %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for POST, got %d", rec.Code)
		}
	})

	t.Run("applies middleware in registration order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router.Use(mw("first"), mw("second"))
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

		want := []string{"first", "second", "handler"}
		if len(order) != len(want) {
			t.Fatalf("expected %v, got %v", want, order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, order)
			}
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	newConfig := func(tokenURL string) *oauth2.Config {
		return &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
			RedirectURL:  "http://localhost:3000/callback",
		}
	}

	t.Run("rejects invalid state", func(t *testing.T) {
		handler := NewOAuthHandler(newConfig("http://unused"), "expected-state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=wrong&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result for invalid state")
		}
	})

	t.Run("rejects missing code", func(t *testing.T) {
		handler := NewOAuthHandler(newConfig("http://unused"), "state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=state&error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result for missing code")
		}
	})

	t.Run("exchanges code for a token", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
		}))
		defer tokenServer.Close()

		handler := NewOAuthHandler(newConfig(tokenServer.URL), "state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=state&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "tok" {
			t.Errorf("unexpected token: %+v", result.Token)
		}
	})

	t.Run("processes the callback only once", func(t *testing.T) {
		handler := NewOAuthHandler(newConfig("http://unused"), "state")

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/callback?state=wrong", nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=wrong", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "already processed") {
			t.Errorf("unexpected replay response: %q", rec.Body.String())
		}
	})
}

type mockChartStore struct {
	charts map[string]*models.Chart // keyed by "{name}|{week}"
	latest map[string]*models.Chart
	weeks  map[string][]string
}

func (m *mockChartStore) Get(chartName, week string) (*models.Chart, error) {
	if chart, ok := m.charts[chartName+"|"+week]; ok {
		return chart, nil
	}
	return nil, fmt.Errorf("%w: %s week %s", shared.ErrChartNotFound, chartName, week)
}

func (m *mockChartStore) Latest(chartName string) (*models.Chart, error) {
	if chart, ok := m.latest[chartName]; ok {
		return chart, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrChartNotFound, chartName)
}

func (m *mockChartStore) Weeks(chartName string) ([]string, error) {
	return m.weeks[chartName], nil
}

type mockPredictionStore struct {
	predictions []*models.Prediction
	listErr     error
}

func (m *mockPredictionStore) List(criteria map[string]any) ([]*models.Prediction, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	filtered := []*models.Prediction{}
	for _, p := range m.predictions {
		if v, ok := criteria["user_id"]; ok && v != p.UserID() {
			continue
		}
		if v, ok := criteria["result"]; ok && v != string(p.Result()) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

func TestChartHandler(t *testing.T) {
	chart := &models.Chart{
		Name: "hot-100",
		Week: "2024-03-09",
		Entries: []models.ChartEntry{
			{Position: 1, Title: "Flowers", Artist: "Miley Cyrus"},
		},
	}

	charts := &mockChartStore{
		charts: map[string]*models.Chart{"hot-100|2024-03-09": chart},
		latest: map[string]*models.Chart{"hot-100": chart},
		weeks:  map[string][]string{"hot-100": {"2024-03-09", "2024-03-02"}},
	}

	p := models.NewPrediction(1, "user-1", "contest-1", models.PredictionEntry,
		"Espresso", "Sabrina Carpenter", models.DirectionNone, "hot-100", "2024-03-09")
	p.SetID("pred-1")
	predictions := &mockPredictionStore{predictions: []*models.Prediction{p}}

	handler := NewChartHandler(charts, predictions)
	router := NewBasicRouter()
	router.Handler(handler)

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		return rec
	}

	t.Run("health", func(t *testing.T) {
		rec := get(t, "/health")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status": "ok"`) {
			t.Errorf("unexpected health response: %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("latest chart week", func(t *testing.T) {
		rec := get(t, "/api/charts/hot-100")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"week": "2024-03-09"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("specific chart week", func(t *testing.T) {
		rec := get(t, "/api/charts/hot-100/2024-03-09")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"title": "Flowers"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("chart weeks listing", func(t *testing.T) {
		rec := get(t, "/api/charts/hot-100/weeks")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "2024-03-02") {
			t.Errorf("unexpected weeks response: %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown chart yields 404", func(t *testing.T) {
		rec := get(t, "/api/charts/no-such-chart")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("invalid week yields 400", func(t *testing.T) {
		rec := get(t, "/api/charts/hot-100/not-a-date")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("predictions with filters", func(t *testing.T) {
		rec := get(t, "/api/predictions?user_id=user-1&result=pending")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"id": "pred-1"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("invalid prediction type filter", func(t *testing.T) {
		rec := get(t, "/api/predictions?type=bogus")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("stats aggregate", func(t *testing.T) {
		rec := get(t, "/api/stats?user_id=user-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"total": 1`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("rejects writes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/predictions", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}
