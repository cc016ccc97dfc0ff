package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
	"github.com/mstride/chartx/internal/tasks"
)

// ChartStore loads cached chart weeks for the read API.
// Implemented by repositories.ChartRepository.
type ChartStore interface {
	Get(chartName, week string) (*models.Chart, error)
	Latest(chartName string) (*models.Chart, error)
	Weeks(chartName string) ([]string, error)
}

// PredictionStore lists predictions for the read API.
// Implemented by repositories.PredictionRepository.
type PredictionStore interface {
	List(criteria map[string]any) ([]*models.Prediction, error)
}

// ChartHandler serves the read-only JSON API over cached charts and predictions.
// Implements the Handler interface for registration with a Router.
type ChartHandler struct {
	charts      ChartStore
	predictions PredictionStore
}

// NewChartHandler creates a handler backed by the given stores.
func NewChartHandler(charts ChartStore, predictions PredictionStore) *ChartHandler {
	return &ChartHandler{charts: charts, predictions: predictions}
}

// Routes returns the HTTP routes this handler serves.
func (h *ChartHandler) Routes() []string {
	return []string{"/health", "/api/charts/", "/api/predictions", "/api/stats"}
}

// ServeHTTP dispatches requests to the matching endpoint.
func (h *ChartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case r.URL.Path == "/health":
		h.handleHealth(w)
	case strings.HasPrefix(r.URL.Path, "/api/charts/"):
		h.handleChart(w, r)
	case r.URL.Path == "/api/predictions":
		h.handlePredictions(w, r)
	case r.URL.Path == "/api/stats":
		h.handleStats(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ChartHandler) handleHealth(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChart serves /api/charts/{chart}, /api/charts/{chart}/weeks,
// and /api/charts/{chart}/{week}.
func (h *ChartHandler) handleChart(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/charts/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Chart name required", http.StatusBadRequest)
		return
	}

	chartName := parts[0]

	switch {
	case len(parts) == 1:
		chart, err := h.charts.Latest(chartName)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chart)

	case len(parts) == 2 && parts[1] == "weeks":
		weeks, err := h.charts.Weeks(chartName)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"chart": chartName, "weeks": weeks})

	case len(parts) == 2:
		week, err := shared.ParseWeek(parts[1])
		if err != nil {
			http.Error(w, "Invalid week (expected YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		chart, err := h.charts.Get(chartName, week)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chart)

	default:
		http.NotFound(w, r)
	}
}

// handlePredictions serves /api/predictions with optional user_id, contest_id,
// chart, week, type, and result query filters.
func (h *ChartHandler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	criteria, err := predictionCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	predictions, err := h.predictions.List(criteria)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]predictionJSON, len(predictions))
	for i, p := range predictions {
		out[i] = toPredictionJSON(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStats serves /api/stats with the same filters as /api/predictions,
// aggregated into accuracy counts.
func (h *ChartHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	criteria, err := predictionCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	predictions, err := h.predictions.List(criteria)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks.ComputeStats(predictions))
}

// predictionCriteria builds repository list criteria from query parameters,
// validating the enum-valued filters.
func predictionCriteria(r *http.Request) (map[string]any, error) {
	q := r.URL.Query()
	criteria := map[string]any{}

	if v := q.Get("user_id"); v != "" {
		criteria["user_id"] = v
	}
	if v := q.Get("contest_id"); v != "" {
		criteria["contest_id"] = v
	}
	if v := q.Get("chart"); v != "" {
		criteria["chart_name"] = v
	}
	if v := q.Get("week"); v != "" {
		week, err := shared.ParseWeek(v)
		if err != nil {
			return nil, errors.New("invalid week (expected YYYY-MM-DD)")
		}
		criteria["week"] = week
	}
	if v := q.Get("type"); v != "" {
		ptype, err := models.ParsePredictionType(v)
		if err != nil {
			return nil, errors.New("invalid type (must be entry, move, or exit)")
		}
		criteria["type"] = string(ptype)
	}
	if v := q.Get("result"); v != "" {
		result, err := models.ParsePredictionResult(v)
		if err != nil {
			return nil, errors.New("invalid result (must be pending, correct, or incorrect)")
		}
		criteria["result"] = string(result)
	}

	return criteria, nil
}

// predictionJSON is the API representation of a prediction.
type predictionJSON struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	ContestID  string     `json:"contest_id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	Direction  string     `json:"direction,omitempty"`
	ChartName  string     `json:"chart"`
	Week       string     `json:"week"`
	Result     string     `json:"result"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toPredictionJSON(p *models.Prediction) predictionJSON {
	return predictionJSON{
		ID:         p.ID(),
		UserID:     p.UserID(),
		ContestID:  p.ContestID(),
		Type:       string(p.Type()),
		Title:      p.Title(),
		Artist:     p.Artist(),
		Direction:  string(p.Direction()),
		ChartName:  p.ChartName(),
		Week:       p.Week(),
		Result:     string(p.Result()),
		ResolvedAt: p.ResolvedAt(),
		CreatedAt:  p.CreatedAt(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrChartNotFound) {
		http.Error(w, "Chart not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
