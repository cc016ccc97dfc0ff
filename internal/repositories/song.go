package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// SongRepository implements [models.Repository] for [models.PersistedSong] persistence.
//
// Songs are the enrichment cache: one row per normalized song key holding the
// metadata the iTunes Search API returned for that song.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new [SongRepository] with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song into the database with generated ID and sequence
func (r *SongRepository) Create(song *models.PersistedSong) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	info := song.Info()
	query := `
		INSERT INTO songs (id, sequence, song_key, source_id, title, artist, album, genre,
			artwork_url, preview_url, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, song.SongKey(), info.SourceID, info.Title, info.Artist,
		info.Album, info.Genre, info.ArtworkURL, info.PreviewURL, info.DurationMS,
		song.CreatedAt(), song.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	query := songSelect + " WHERE id = ? AND deleted_at IS NULL"

	song, err := scanSong(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song: %w", err)
	}

	return song, nil
}

// GetByKey retrieves a song by its normalized song key, excluding soft-deleted songs
func (r *SongRepository) GetByKey(songKey string) (*models.PersistedSong, error) {
	query := songSelect + " WHERE song_key = ? AND deleted_at IS NULL"

	song, err := scanSong(r.db.QueryRow(query, songKey))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, songKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song: %w", err)
	}

	return song, nil
}

// Update modifies an existing song's metadata in the database
func (r *SongRepository) Update(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	info := song.Info()
	query := `
		UPDATE songs
		SET source_id = ?, title = ?, artist = ?, album = ?, genre = ?,
			artwork_url = ?, preview_url = ?, duration_ms = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, info.SourceID, info.Title, info.Artist, info.Album, info.Genre,
		info.ArtworkURL, info.PreviewURL, info.DurationMS, now, song.ID())
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("song not found or already deleted: %s", song.ID())
	}

	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("song not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs.
//
// Supported criteria: genre, artist.
func (r *SongRepository) List(criteria map[string]any) ([]*models.PersistedSong, error) {
	query := songSelect + " WHERE deleted_at IS NULL"

	args := []any{}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND genre = ?"
		args = append(args, genre)
	}
	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.PersistedSong
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

const songSelect = `
	SELECT id, sequence, song_key, source_id, title, artist, album, genre,
		artwork_url, preview_url, duration_ms, created_at, updated_at, deleted_at
	FROM songs
`

func scanSong(row rowScanner) (*models.PersistedSong, error) {
	var (
		id        string
		sequence  int
		songKey   string
		info      models.SongInfo
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &songKey, &info.SourceID, &info.Title, &info.Artist, &info.Album,
		&info.Genre, &info.ArtworkURL, &info.PreviewURL, &info.DurationMS, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	song := models.NewPersistedSong(sequence, info.Title, info.Artist, info)
	song.SetID(id)
	song.SetSongKey(songKey)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
