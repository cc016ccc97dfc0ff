package repositories

import (
	"fmt"
	"strings"

	"github.com/mstride/chartx/internal/models"
)

// SongCacheAdapter implements tasks.SongCacher using SongRepository.
//
// Provides automatic song caching with deduplication via the song_key constraint.
// Duplicate songs are silently ignored (UNIQUE constraint violations).
type SongCacheAdapter struct {
	repo *SongRepository
}

// NewSongCacheAdapter creates a new SongCacheAdapter with the given repository
func NewSongCacheAdapter(repo *SongRepository) *SongCacheAdapter {
	return &SongCacheAdapter{repo: repo}
}

// Lookup returns the cached metadata for a song key, or false when uncached.
func (a *SongCacheAdapter) Lookup(songKey string) (*models.SongInfo, bool) {
	song, err := a.repo.GetByKey(songKey)
	if err != nil || song == nil {
		return nil, false
	}

	info := song.Info()
	return &info, true
}

// Store caches enriched metadata under a song key.
// Returns nil if the song already exists (deduplication).
// Only returns errors for actual failures (not constraint violations).
func (a *SongCacheAdapter) Store(songKey string, info models.SongInfo) error {
	if _, ok := a.Lookup(songKey); ok {
		return nil
	}

	song := models.NewPersistedSong(0, info.Title, info.Artist, info)
	song.SetSongKey(songKey)

	if err := a.repo.Create(song); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache song: %w", err)
	}

	return nil
}
