package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mstride/chartx/internal/shared"
)

// PersistedSong wraps enriched song metadata for storage.
// The song key deduplicates rows across charts and weeks.
type PersistedSong struct {
	id        string
	sequence  int
	songKey   string
	info      SongInfo
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedSong creates a PersistedSong keyed by the chart title and artist,
// which may differ from the titling the search API returns.
func NewPersistedSong(sequence int, chartTitle, chartArtist string, info SongInfo) *PersistedSong {
	now := time.Now()
	return &PersistedSong{
		sequence:  sequence,
		songKey:   shared.NormalizeSongKey(chartTitle, chartArtist),
		info:      info,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *PersistedSong) ID() string            { return s.id }
func (s *PersistedSong) Sequence() int         { return s.sequence }
func (s *PersistedSong) SongKey() string       { return s.songKey }
func (s *PersistedSong) Info() SongInfo        { return s.info }
func (s *PersistedSong) CreatedAt() time.Time  { return s.createdAt }
func (s *PersistedSong) UpdatedAt() time.Time  { return s.updatedAt }
func (s *PersistedSong) DeletedAt() *time.Time { return s.deletedAt }

func (s *PersistedSong) SetID(id string)           { s.id = id }
func (s *PersistedSong) SetSongKey(key string)     { s.songKey = key }
func (s *PersistedSong) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *PersistedSong) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *PersistedSong) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Validate checks that the song has a key and the metadata names a song.
func (s *PersistedSong) Validate() error {
	if s.songKey == "" {
		return fmt.Errorf("song key is required")
	}
	if strings.TrimSpace(s.info.Title) == "" || strings.TrimSpace(s.info.Artist) == "" {
		return fmt.Errorf("title and artist are required")
	}
	return nil
}
