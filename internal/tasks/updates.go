package tasks

import (
	"fmt"

	"github.com/mstride/chartx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchChart Phase = iota
	FetchCharts
	FetchHealth
	FetchArchive
	EnrichSongs
	ResolvePredictions
	ExportChart
)

func (p Phase) String() string {
	switch p {
	case FetchChart:
		return "fetch_chart"
	case FetchCharts:
		return "fetch_charts"
	case FetchHealth:
		return "fetch_health"
	case FetchArchive:
		return "fetch_archive"
	case EnrichSongs:
		return "enrich_songs"
	case ResolvePredictions:
		return "resolve_predictions"
	case ExportChart:
		return "export_chart"
	default:
		return ""
	}
}

func fetchChartUpdate(step, total int, chartName, week string) ProgressUpdate {
	msg := fmt.Sprintf("Fetching %s from provider...", chartName)
	if week != "" {
		msg = fmt.Sprintf("Fetching %s (week %s) from provider...", chartName, week)
	}
	return ProgressUpdate{
		Phase:   FetchChart,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func foundChartUpdate(step, total int, chart *models.Chart) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found chart: %s week %s (%d entries)", chart.Name, chart.Week, len(chart.Entries)),
		Data:    chart,
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func enrichSongUpdate(step, total int, entry *models.ChartEntry) ProgressUpdate {
	if entry == nil {
		return ProgressUpdate{
			Phase:   EnrichSongs,
			Step:    step,
			Total:   total,
			Message: "Enriching chart songs...",
		}
	}
	return ProgressUpdate{
		Phase:   EnrichSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Artist, entry.Title),
	}
}

func enrichSkippedUpdate(step, total int, entry *models.ChartEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s (cached)", step, total, entry.Artist, entry.Title),
	}
}

func enrichFailedUpdate(step, total int, entry *models.ChartEntry, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, entry.Artist, entry.Title, err),
	}
}

func cacheFailedUpdate(step, total int, entry *models.ChartEntry, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] failed to cache %s - %s: %v", step, total, entry.Artist, entry.Title, err),
	}
}

func resolvePredictionUpdate(step, total int, p *models.Prediction, result models.PredictionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePredictions,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %q by %q: %s", step, total, p.Type(), p.Title(), p.Artist(), result),
	}
}

func resolveSkippedUpdate(step, total int, p *models.Prediction, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePredictions,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %q by %q left pending: %s", step, total, p.Title(), p.Artist(), reason),
	}
}

func exportingChartUpdate(step, total int, name, week string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s week %s...", step, total, name, week),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
