package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// Resolve scores a contest's pending predictions against cached chart weeks.
//
// Each prediction is scored by comparing its target week against the week
// before it:
//
//   - entry: correct when the song charts in the target week but not the prior week
//   - exit: correct when the song charted in the prior week but not the target week
//   - move: correct when the song charts in both weeks and moved in the
//     predicted direction; a song absent from either week is incorrect
//
// Predictions whose target week (or its predecessor) is not cached stay
// pending, so the operation is safe to re-run; already-resolved predictions
// are never touched. When every prediction has been resolved the contest is
// marked resolved. Returns ErrContestResolved for a contest already resolved.
func (e *ChartEngine) Resolve(ctx context.Context, contest *models.Contest, predictions []*models.Prediction, charts ChartSource, progress chan<- ProgressUpdate) (*ResolveResult, error) {
	if charts == nil {
		return nil, fmt.Errorf("%w: chart source not initialized", shared.ErrServiceUnavailable)
	}
	if contest == nil {
		return nil, shared.ErrContestNotFound
	}
	if contest.Resolved() {
		return nil, fmt.Errorf("%w: %s", shared.ErrContestResolved, contest.ID())
	}

	result := &ResolveResult{ContestID: contest.ID()}
	total := len(predictions)
	now := time.Now()

	for i, p := range predictions {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if !p.Pending() {
			continue
		}

		curr, err := charts.Get(p.ChartName(), p.Week())
		if err != nil {
			result.Pending++
			e.sendProgress(progress, resolveSkippedUpdate(i+1, total, p, "target week not cached"))
			continue
		}

		prevWeek, err := shared.PreviousWeek(p.Week())
		if err != nil {
			result.Pending++
			e.sendProgress(progress, resolveSkippedUpdate(i+1, total, p, err.Error()))
			continue
		}

		prev, err := charts.Get(p.ChartName(), prevWeek)
		if err != nil {
			result.Pending++
			e.sendProgress(progress, resolveSkippedUpdate(i+1, total, p, "prior week not cached"))
			continue
		}

		outcome := scorePrediction(p, prev, curr)
		if err := p.Resolve(outcome, now); err != nil {
			return result, fmt.Errorf("failed to resolve prediction %s: %w", p.ID(), err)
		}

		result.Resolved++
		result.Updated = append(result.Updated, p)
		if outcome == models.ResultCorrect {
			result.Correct++
		} else {
			result.Incorrect++
		}

		e.sendProgress(progress, resolvePredictionUpdate(i+1, total, p, outcome))
	}

	if result.Pending == 0 {
		contest.SetResolved(true)
	}

	return result, nil
}

// scorePrediction scores one prediction against the prior and target chart weeks.
func scorePrediction(p *models.Prediction, prev, curr *models.Chart) models.PredictionResult {
	key := p.SongKey()
	prevEntry := findEntry(prev, key)
	currEntry := findEntry(curr, key)

	correct := false
	switch p.Type() {
	case models.PredictionEntry:
		correct = currEntry != nil && prevEntry == nil
	case models.PredictionExit:
		correct = currEntry == nil && prevEntry != nil
	case models.PredictionMove:
		if currEntry != nil && prevEntry != nil {
			switch p.Direction() {
			case models.DirectionUp:
				correct = currEntry.Position < prevEntry.Position
			case models.DirectionDown:
				correct = currEntry.Position > prevEntry.Position
			}
		}
	}

	if correct {
		return models.ResultCorrect
	}
	return models.ResultIncorrect
}

// findEntry locates a song on a chart week by normalized song key.
func findEntry(chart *models.Chart, songKey string) *models.ChartEntry {
	for i := range chart.Entries {
		e := &chart.Entries[i]
		if shared.NormalizeSongKey(e.Title, e.Artist) == songKey {
			return e
		}
	}
	return nil
}
