package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mstride/chartx/internal/shared"
)

// PredictionType classifies what a prediction forecasts about a chart week.
type PredictionType string

const (
	PredictionEntry PredictionType = "entry" // a song will debut on the chart
	PredictionMove  PredictionType = "move"  // a charting song will move in a direction
	PredictionExit  PredictionType = "exit"  // a charting song will drop off
)

// ParsePredictionType parses a prediction type from user input.
func ParsePredictionType(s string) (PredictionType, error) {
	switch PredictionType(strings.ToLower(strings.TrimSpace(s))) {
	case PredictionEntry:
		return PredictionEntry, nil
	case PredictionMove:
		return PredictionMove, nil
	case PredictionExit:
		return PredictionExit, nil
	default:
		return "", fmt.Errorf("%w: prediction type %q (must be entry, move, or exit)", shared.ErrInvalidArgument, s)
	}
}

// Direction is the predicted movement for a move prediction.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection parses a movement direction from user input.
// The empty string parses to DirectionNone.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionNone:
		return DirectionNone, nil
	case DirectionUp:
		return DirectionUp, nil
	case DirectionDown:
		return DirectionDown, nil
	default:
		return "", fmt.Errorf("%w: direction %q (must be up or down)", shared.ErrInvalidArgument, s)
	}
}

// PredictionResult is the resolution state of a prediction.
type PredictionResult string

const (
	ResultPending   PredictionResult = "pending"
	ResultCorrect   PredictionResult = "correct"
	ResultIncorrect PredictionResult = "incorrect"
)

// ParsePredictionResult parses a result filter from user input.
// The empty string parses to "" meaning "any".
func ParsePredictionResult(s string) (PredictionResult, error) {
	switch PredictionResult(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case ResultPending:
		return ResultPending, nil
	case ResultCorrect:
		return ResultCorrect, nil
	case ResultIncorrect:
		return ResultIncorrect, nil
	default:
		return "", fmt.Errorf("%w: result %q (must be pending, correct, or incorrect)", shared.ErrInvalidArgument, s)
	}
}

// Prediction represents a user's forecast about a future chart change.
type Prediction struct {
	id         string
	sequence   int
	userID     string
	contestID  string
	ptype      PredictionType
	title      string
	artist     string
	songKey    string
	direction  Direction
	chartName  string
	week       string
	result     PredictionResult
	resolvedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPrediction creates a pending Prediction for the given contest and target week.
func NewPrediction(sequence int, userID, contestID string, ptype PredictionType, title, artist string, direction Direction, chartName, week string) *Prediction {
	now := time.Now()
	return &Prediction{
		sequence:  sequence,
		userID:    userID,
		contestID: contestID,
		ptype:     ptype,
		title:     title,
		artist:    artist,
		songKey:   shared.NormalizeSongKey(title, artist),
		direction: direction,
		chartName: chartName,
		week:      week,
		result:    ResultPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *Prediction) ID() string               { return p.id }
func (p *Prediction) Sequence() int            { return p.sequence }
func (p *Prediction) UserID() string           { return p.userID }
func (p *Prediction) ContestID() string        { return p.contestID }
func (p *Prediction) Type() PredictionType     { return p.ptype }
func (p *Prediction) Title() string            { return p.title }
func (p *Prediction) Artist() string           { return p.artist }
func (p *Prediction) SongKey() string          { return p.songKey }
func (p *Prediction) Direction() Direction     { return p.direction }
func (p *Prediction) ChartName() string        { return p.chartName }
func (p *Prediction) Week() string             { return p.week }
func (p *Prediction) Result() PredictionResult { return p.result }
func (p *Prediction) ResolvedAt() *time.Time   { return p.resolvedAt }
func (p *Prediction) CreatedAt() time.Time     { return p.createdAt }
func (p *Prediction) UpdatedAt() time.Time     { return p.updatedAt }
func (p *Prediction) DeletedAt() *time.Time    { return p.deletedAt }

func (p *Prediction) SetID(id string)           { p.id = id }
func (p *Prediction) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *Prediction) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *Prediction) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// SetResult restores a resolution state loaded from the database.
func (p *Prediction) SetResult(result PredictionResult, resolvedAt *time.Time) {
	p.result = result
	p.resolvedAt = resolvedAt
}

// Resolve marks a pending prediction correct or incorrect.
// Returns ErrPredictionResolved if the prediction was already resolved.
func (p *Prediction) Resolve(result PredictionResult, at time.Time) error {
	if p.result != ResultPending {
		return fmt.Errorf("%w: %s", shared.ErrPredictionResolved, p.id)
	}
	if result != ResultCorrect && result != ResultIncorrect {
		return fmt.Errorf("%w: cannot resolve to %q", shared.ErrInvalidArgument, result)
	}

	p.result = result
	p.resolvedAt = &at
	p.updatedAt = at
	return nil
}

// Pending reports whether the prediction is still unresolved.
func (p *Prediction) Pending() bool { return p.result == ResultPending }

// Validate checks prediction type, direction, and required fields.
func (p *Prediction) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("user is required")
	}
	if p.contestID == "" {
		return fmt.Errorf("contest is required")
	}
	if strings.TrimSpace(p.title) == "" || strings.TrimSpace(p.artist) == "" {
		return fmt.Errorf("title and artist are required")
	}
	if p.chartName == "" || p.week == "" {
		return fmt.Errorf("chart name and target week are required")
	}

	switch p.ptype {
	case PredictionMove:
		if p.direction != DirectionUp && p.direction != DirectionDown {
			return fmt.Errorf("move predictions require a direction (up or down)")
		}
	case PredictionEntry, PredictionExit:
		if p.direction != DirectionNone {
			return fmt.Errorf("%s predictions must not have a direction", p.ptype)
		}
	default:
		return fmt.Errorf("invalid prediction type: %q", p.ptype)
	}

	switch p.result {
	case ResultPending, ResultCorrect, ResultIncorrect:
	default:
		return fmt.Errorf("invalid prediction result: %q", p.result)
	}

	return nil
}
