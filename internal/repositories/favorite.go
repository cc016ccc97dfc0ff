package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// FavoriteRepository implements [models.Repository] for [models.Favorite] persistence.
//
// A partial unique index on (user_id, song_key, chart_name) keeps each song
// favorited at most once per user and chart while soft-deleted rows remain.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new [FavoriteRepository] with the given database connection
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create inserts a new favorite into the database with generated ID and sequence
func (r *FavoriteRepository) Create(favorite *models.Favorite) error {
	sequence, err := NextSequence(r.db, "favorites")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	favorite.SetID(id)

	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO favorites (id, sequence, user_id, song_key, title, artist, chart_name, week, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, favorite.UserID(), favorite.SongKey(), favorite.Title(),
		favorite.Artist(), favorite.ChartName(), favorite.Week(), favorite.CreatedAt(), favorite.UpdatedAt())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: song already favorited", shared.ErrInvalidInput)
		}
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	return nil
}

// Get retrieves a favorite by ID, excluding soft-deleted favorites
func (r *FavoriteRepository) Get(id string) (*models.Favorite, error) {
	query := `
		SELECT id, sequence, user_id, song_key, title, artist, chart_name, week, created_at, updated_at, deleted_at
		FROM favorites
		WHERE id = ? AND deleted_at IS NULL
	`

	favorite, err := scanFavorite(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("favorite not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite: %w", err)
	}

	return favorite, nil
}

// Find retrieves a user's favorite for a song on a chart, or nil when absent.
func (r *FavoriteRepository) Find(userID, songKey, chartName string) (*models.Favorite, error) {
	query := `
		SELECT id, sequence, user_id, song_key, title, artist, chart_name, week, created_at, updated_at, deleted_at
		FROM favorites
		WHERE user_id = ? AND song_key = ? AND chart_name = ? AND deleted_at IS NULL
	`

	favorite, err := scanFavorite(r.db.QueryRow(query, userID, songKey, chartName))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite: %w", err)
	}

	return favorite, nil
}

// Toggle favorites a song, or removes an existing favorite. Returns true
// when the song is favorited after the call.
func (r *FavoriteRepository) Toggle(favorite *models.Favorite) (bool, error) {
	existing, err := r.Find(favorite.UserID(), favorite.SongKey(), favorite.ChartName())
	if err != nil {
		return false, err
	}

	if existing != nil {
		if err := r.Delete(existing.ID()); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := r.Create(favorite); err != nil {
		return false, err
	}
	return true, nil
}

// Update modifies an existing favorite in the database
func (r *FavoriteRepository) Update(favorite *models.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	favorite.SetUpdatedAt(now)

	query := `
		UPDATE favorites
		SET title = ?, artist = ?, week = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, favorite.Title(), favorite.Artist(), favorite.Week(), now, favorite.ID())
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("favorite not found or already deleted: %s", favorite.ID())
	}

	return nil
}

// Delete soft-deletes a favorite by ID
func (r *FavoriteRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE favorites
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("favorite not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all favorites matching the given criteria, excluding soft-deleted favorites.
//
// Supported criteria: user_id, chart_name, song_key.
func (r *FavoriteRepository) List(criteria map[string]any) ([]*models.Favorite, error) {
	query := `
		SELECT id, sequence, user_id, song_key, title, artist, chart_name, week, created_at, updated_at, deleted_at
		FROM favorites
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if chartName, ok := criteria["chart_name"].(string); ok && chartName != "" {
		query += " AND chart_name = ?"
		args = append(args, chartName)
	}
	if songKey, ok := criteria["song_key"].(string); ok && songKey != "" {
		query += " AND song_key = ?"
		args = append(args, songKey)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*models.Favorite
	for rows.Next() {
		favorite, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return favorites, nil
}

func scanFavorite(row rowScanner) (*models.Favorite, error) {
	var (
		id        string
		sequence  int
		userID    string
		songKey   string
		title     string
		artist    string
		chartName string
		week      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &userID, &songKey, &title, &artist, &chartName, &week, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	favorite := models.NewFavorite(sequence, userID, title, artist, chartName, week)
	favorite.SetID(id)
	favorite.SetCreatedAt(createdAt)
	favorite.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		favorite.SetDeletedAt(&deletedAt.Time)
	}

	return favorite, nil
}
