package models

// ChartRef identifies a chart published by the provider.
type ChartRef struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Chart represents a single ranked chart week.
type Chart struct {
	Name    string       `json:"name"`
	Week    string       `json:"week"`
	Entries []ChartEntry `json:"entries"`
}

// ChartEntry represents one ranked song on a chart week.
//
// LastWeek is 0 for debuts.
type ChartEntry struct {
	Position int    `json:"position"`
	LastWeek int    `json:"last_week"`
	Peak     int    `json:"peak"`
	WeeksOn  int    `json:"weeks_on"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
}

// Entry returns the entry at the given chart position, or nil when absent.
func (c *Chart) Entry(position int) *ChartEntry {
	for i := range c.Entries {
		if c.Entries[i].Position == position {
			return &c.Entries[i]
		}
	}
	return nil
}

// SongInfo represents enriched song metadata from the iTunes Search API.
type SongInfo struct {
	SourceID   string `json:"source_id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Genre      string `json:"genre"`
	ArtworkURL string `json:"artwork_url"`
	PreviewURL string `json:"preview_url"`
	DurationMS int    `json:"duration_ms"`
}
