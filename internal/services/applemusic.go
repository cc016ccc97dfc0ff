// iTunes Search API client for song enrichment
//
// Response types based on https://performance-partners.apple.com/search-api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

const defaultAppleMusicBaseURL = "https://itunes.apple.com"

// iTunesResult is one song result from the search API.
type iTunesResult struct {
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	PrimaryGenreName string `json:"primaryGenreName"`
	ArtworkURL100    string `json:"artworkUrl100"`
	PreviewURL       string `json:"previewUrl"`
	TrackTimeMillis  int    `json:"trackTimeMillis"`
}

// iTunesSearchResponse is the search API envelope.
type iTunesSearchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []iTunesResult `json:"results"`
}

// AppleMusicService queries the iTunes Search API for song metadata.
// The API is unauthenticated; Apple documents a limit of roughly 20
// requests per minute, so callers pace requests themselves.
type AppleMusicService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAppleMusicService creates an iTunes Search API client.
func NewAppleMusicService(baseURL string) *AppleMusicService {
	if baseURL == "" {
		baseURL = defaultAppleMusicBaseURL
	}

	return &AppleMusicService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (a *AppleMusicService) Name() string {
	return "Apple Music"
}

func (a *AppleMusicService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := a.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: rate limited (status %d)", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchSong searches for a song by title and artist and returns the best match.
// Prefers the result whose normalized title and artist match the query exactly,
// falling back to the first result. Returns ErrSongNotFound when the search
// comes back empty.
//
// Calls GET /search?term={title} {artist}&media=music&entity=song&limit=5.
func (a *AppleMusicService) SearchSong(ctx context.Context, title, artist string) (*models.SongInfo, error) {
	term := fmt.Sprintf("%s %s", title, artist)
	endpoint := fmt.Sprintf("/search?term=%s&media=music&entity=song&limit=5", url.QueryEscape(term))

	var response iTunesSearchResponse
	if err := a.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if response.ResultCount == 0 || len(response.Results) == 0 {
		return nil, fmt.Errorf("%w: %q by %q", shared.ErrSongNotFound, title, artist)
	}

	want := shared.NormalizeSongKey(title, artist)
	best := response.Results[0]
	for _, r := range response.Results {
		if shared.NormalizeSongKey(r.TrackName, r.ArtistName) == want {
			best = r
			break
		}
	}

	return songInfoFromResult(best), nil
}

// LookupSong retrieves a song by its iTunes track ID.
//
// Calls GET /lookup?id={id}.
func (a *AppleMusicService) LookupSong(ctx context.Context, trackID string) (*models.SongInfo, error) {
	endpoint := fmt.Sprintf("/lookup?id=%s", url.QueryEscape(trackID))

	var response iTunesSearchResponse
	if err := a.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if response.ResultCount == 0 || len(response.Results) == 0 {
		return nil, fmt.Errorf("%w: track id %s", shared.ErrSongNotFound, trackID)
	}

	return songInfoFromResult(response.Results[0]), nil
}

func songInfoFromResult(r iTunesResult) *models.SongInfo {
	return &models.SongInfo{
		SourceID:   fmt.Sprintf("%d", r.TrackID),
		Title:      r.TrackName,
		Artist:     r.ArtistName,
		Album:      r.CollectionName,
		Genre:      r.PrimaryGenreName,
		ArtworkURL: r.ArtworkURL100,
		PreviewURL: r.PreviewURL,
		DurationMS: r.TrackTimeMillis,
	}
}
