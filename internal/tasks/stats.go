package tasks

import (
	"sort"

	"github.com/mstride/chartx/internal/models"
)

// FilterOptions narrows a prediction list. Zero values match everything;
// set fields combine conjunctively.
type FilterOptions struct {
	Result    models.PredictionResult // Filter by resolution state
	Type      models.PredictionType   // Filter by prediction type
	ChartName string                  // Filter by chart
	Week      string                  // Filter by target week
}

// FilterPredictions returns the predictions matching the given filters,
// most recent first.
func FilterPredictions(predictions []*models.Prediction, opts FilterOptions) []*models.Prediction {
	filtered := make([]*models.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if opts.Result != "" && p.Result() != opts.Result {
			continue
		}
		if opts.Type != "" && p.Type() != opts.Type {
			continue
		}
		if opts.ChartName != "" && p.ChartName() != opts.ChartName {
			continue
		}
		if opts.Week != "" && p.Week() != opts.Week {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt().After(filtered[j].CreatedAt())
	})

	return filtered
}

// TypeStats aggregates resolution counts for one prediction type.
type TypeStats struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Pending   int     `json:"pending"`
	Accuracy  float64 `json:"accuracy"`
}

// PredictionStats summarizes a user's prediction record.
//
// Accuracy is correct / (correct + incorrect) as a percentage; pending
// predictions do not count against it. A record with no resolved
// predictions has zero accuracy rather than NaN.
type PredictionStats struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Pending   int     `json:"pending"`
	Accuracy  float64 `json:"accuracy"`

	ByType map[models.PredictionType]TypeStats `json:"by_type"`
}

// ComputeStats aggregates resolution counts and accuracy over predictions.
func ComputeStats(predictions []*models.Prediction) *PredictionStats {
	stats := &PredictionStats{
		ByType: make(map[models.PredictionType]TypeStats),
	}

	for _, p := range predictions {
		stats.Total++
		ts := stats.ByType[p.Type()]
		ts.Total++

		switch p.Result() {
		case models.ResultCorrect:
			stats.Correct++
			ts.Correct++
		case models.ResultIncorrect:
			stats.Incorrect++
			ts.Incorrect++
		default:
			stats.Pending++
			ts.Pending++
		}

		stats.ByType[p.Type()] = ts
	}

	stats.Accuracy = accuracy(stats.Correct, stats.Incorrect)
	for ptype, ts := range stats.ByType {
		ts.Accuracy = accuracy(ts.Correct, ts.Incorrect)
		stats.ByType[ptype] = ts
	}

	return stats
}

func accuracy(correct, incorrect int) float64 {
	resolved := correct + incorrect
	if resolved == 0 {
		return 0
	}
	return float64(correct) / float64(resolved) * 100
}
