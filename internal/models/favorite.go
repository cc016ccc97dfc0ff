package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mstride/chartx/internal/shared"
)

// Favorite represents a song a user has saved from a chart.
type Favorite struct {
	id        string
	sequence  int
	userID    string
	title     string
	artist    string
	songKey   string
	chartName string
	week      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewFavorite creates a Favorite for the given song as seen on a chart week.
func NewFavorite(sequence int, userID, title, artist, chartName, week string) *Favorite {
	now := time.Now()
	return &Favorite{
		sequence:  sequence,
		userID:    userID,
		title:     title,
		artist:    artist,
		songKey:   shared.NormalizeSongKey(title, artist),
		chartName: chartName,
		week:      week,
		createdAt: now,
		updatedAt: now,
	}
}

func (f *Favorite) ID() string            { return f.id }
func (f *Favorite) Sequence() int         { return f.sequence }
func (f *Favorite) UserID() string        { return f.userID }
func (f *Favorite) Title() string         { return f.title }
func (f *Favorite) Artist() string        { return f.artist }
func (f *Favorite) SongKey() string       { return f.songKey }
func (f *Favorite) ChartName() string     { return f.chartName }
func (f *Favorite) Week() string          { return f.week }
func (f *Favorite) CreatedAt() time.Time  { return f.createdAt }
func (f *Favorite) UpdatedAt() time.Time  { return f.updatedAt }
func (f *Favorite) DeletedAt() *time.Time { return f.deletedAt }

func (f *Favorite) SetID(id string)           { f.id = id }
func (f *Favorite) SetCreatedAt(t time.Time)  { f.createdAt = t }
func (f *Favorite) SetUpdatedAt(t time.Time)  { f.updatedAt = t }
func (f *Favorite) SetDeletedAt(t *time.Time) { f.deletedAt = t }

// Validate checks that the favorite names a song and the chart it came from.
func (f *Favorite) Validate() error {
	if f.userID == "" {
		return fmt.Errorf("user is required")
	}
	if strings.TrimSpace(f.title) == "" || strings.TrimSpace(f.artist) == "" {
		return fmt.Errorf("title and artist are required")
	}
	if f.chartName == "" {
		return fmt.Errorf("chart name is required")
	}
	return nil
}
