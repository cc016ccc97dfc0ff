package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// PredictionRepository implements [models.Repository] for [models.Prediction] persistence.
type PredictionRepository struct {
	db *sql.DB
}

// NewPredictionRepository creates a new [PredictionRepository] with the given database connection
func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create inserts a new prediction into the database with generated ID and sequence
func (r *PredictionRepository) Create(prediction *models.Prediction) error {
	sequence, err := NextSequence(r.db, "predictions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	prediction.SetID(id)

	if err := prediction.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO predictions (id, sequence, user_id, contest_id, type, title, artist, song_key,
			direction, chart_name, week, result, resolved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, prediction.UserID(), prediction.ContestID(),
		string(prediction.Type()), prediction.Title(), prediction.Artist(), prediction.SongKey(),
		string(prediction.Direction()), prediction.ChartName(), prediction.Week(),
		string(prediction.Result()), prediction.ResolvedAt(), prediction.CreatedAt(), prediction.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// Get retrieves a prediction by ID, excluding soft-deleted predictions
func (r *PredictionRepository) Get(id string) (*models.Prediction, error) {
	query := `
		SELECT id, sequence, user_id, contest_id, type, title, artist, song_key,
			direction, chart_name, week, result, resolved_at, created_at, updated_at, deleted_at
		FROM predictions
		WHERE id = ? AND deleted_at IS NULL
	`

	prediction, err := scanPrediction(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prediction not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction: %w", err)
	}

	return prediction, nil
}

// Update persists the prediction's resolution state
func (r *PredictionRepository) Update(prediction *models.Prediction) error {
	if err := prediction.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	prediction.SetUpdatedAt(now)

	query := `
		UPDATE predictions
		SET result = ?, resolved_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(prediction.Result()), prediction.ResolvedAt(), now, prediction.ID())
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("prediction not found or already deleted: %s", prediction.ID())
	}

	return nil
}

// Delete soft-deletes a prediction by ID
func (r *PredictionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE predictions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete prediction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("prediction not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all predictions matching the given criteria, excluding soft-deleted predictions.
//
// Supported criteria: user_id, contest_id, chart_name, week, type, result.
func (r *PredictionRepository) List(criteria map[string]any) ([]*models.Prediction, error) {
	query := `
		SELECT id, sequence, user_id, contest_id, type, title, artist, song_key,
			direction, chart_name, week, result, resolved_at, created_at, updated_at, deleted_at
		FROM predictions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if contestID, ok := criteria["contest_id"].(string); ok && contestID != "" {
		query += " AND contest_id = ?"
		args = append(args, contestID)
	}
	if chartName, ok := criteria["chart_name"].(string); ok && chartName != "" {
		query += " AND chart_name = ?"
		args = append(args, chartName)
	}
	if week, ok := criteria["week"].(string); ok && week != "" {
		query += " AND week = ?"
		args = append(args, week)
	}
	if ptype, ok := criteria["type"].(string); ok && ptype != "" {
		query += " AND type = ?"
		args = append(args, ptype)
	}
	if result, ok := criteria["result"].(string); ok && result != "" {
		query += " AND result = ?"
		args = append(args, result)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, prediction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return predictions, nil
}

func scanPrediction(row rowScanner) (*models.Prediction, error) {
	var (
		id         string
		sequence   int
		userID     string
		contestID  string
		ptype      string
		title      string
		artist     string
		songKey    string
		direction  string
		chartName  string
		week       string
		result     string
		resolvedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &userID, &contestID, &ptype, &title, &artist, &songKey,
		&direction, &chartName, &week, &result, &resolvedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	prediction := models.NewPrediction(sequence, userID, contestID, models.PredictionType(ptype),
		title, artist, models.Direction(direction), chartName, week)
	prediction.SetID(id)
	prediction.SetCreatedAt(createdAt)
	prediction.SetUpdatedAt(updatedAt)
	if resolvedAt.Valid {
		prediction.SetResult(models.PredictionResult(result), &resolvedAt.Time)
	} else {
		prediction.SetResult(models.PredictionResult(result), nil)
	}
	if deletedAt.Valid {
		prediction.SetDeletedAt(&deletedAt.Time)
	}

	return prediction, nil
}
