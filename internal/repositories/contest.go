package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// ContestRepository implements [models.Repository] for [models.Contest] persistence.
type ContestRepository struct {
	db *sql.DB
}

// NewContestRepository creates a new [ContestRepository] with the given database connection
func NewContestRepository(db *sql.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

// Create inserts a new contest into the database with generated ID and sequence
func (r *ContestRepository) Create(contest *models.Contest) error {
	sequence, err := NextSequence(r.db, "contests")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	contest.SetID(id)

	if err := contest.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO contests (id, sequence, name, chart_name, opens_at, closes_at, resolved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, contest.Name(), contest.ChartName(),
		contest.OpensAt(), contest.ClosesAt(), contest.Resolved(), contest.CreatedAt(), contest.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert contest: %w", err)
	}

	return nil
}

// Get retrieves a contest by ID, excluding soft-deleted contests
func (r *ContestRepository) Get(id string) (*models.Contest, error) {
	query := `
		SELECT id, sequence, name, chart_name, opens_at, closes_at, resolved, created_at, updated_at, deleted_at
		FROM contests
		WHERE id = ? AND deleted_at IS NULL
	`

	contest, err := scanContest(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrContestNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query contest: %w", err)
	}

	return contest, nil
}

// Update modifies an existing contest in the database
func (r *ContestRepository) Update(contest *models.Contest) error {
	if err := contest.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	contest.SetUpdatedAt(now)

	query := `
		UPDATE contests
		SET name = ?, opens_at = ?, closes_at = ?, resolved = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, contest.Name(), contest.OpensAt(), contest.ClosesAt(),
		contest.Resolved(), now, contest.ID())
	if err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrContestNotFound, contest.ID())
	}

	return nil
}

// Delete soft-deletes a contest by ID
func (r *ContestRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE contests
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrContestNotFound, id)
	}

	return nil
}

// List retrieves all contests matching the given criteria, excluding soft-deleted contests.
//
// Supported criteria: chart_name, resolved (bool).
func (r *ContestRepository) List(criteria map[string]any) ([]*models.Contest, error) {
	query := `
		SELECT id, sequence, name, chart_name, opens_at, closes_at, resolved, created_at, updated_at, deleted_at
		FROM contests
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if chartName, ok := criteria["chart_name"].(string); ok && chartName != "" {
		query += " AND chart_name = ?"
		args = append(args, chartName)
	}
	if resolved, ok := criteria["resolved"].(bool); ok {
		query += " AND resolved = ?"
		args = append(args, resolved)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests: %w", err)
	}
	defer rows.Close()

	var contests []*models.Contest
	for rows.Next() {
		contest, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest: %w", err)
		}
		contests = append(contests, contest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return contests, nil
}

func scanContest(row rowScanner) (*models.Contest, error) {
	var (
		id        string
		sequence  int
		name      string
		chartName string
		opensAt   time.Time
		closesAt  time.Time
		resolved  bool
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &name, &chartName, &opensAt, &closesAt, &resolved, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	contest := models.NewContest(sequence, name, chartName, opensAt, closesAt)
	contest.SetID(id)
	contest.SetResolved(resolved)
	contest.SetCreatedAt(createdAt)
	contest.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		contest.SetDeletedAt(&deletedAt.Time)
	}

	return contest, nil
}
