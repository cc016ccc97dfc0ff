package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstride/chartx/internal/shared"
)

func TestAppleMusicService(t *testing.T) {
	t.Run("NewAppleMusicService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewAppleMusicService(""); svc == nil {
				t.Fatal("expected service to be created")
			} else if svc.baseURL != defaultAppleMusicBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultAppleMusicBaseURL, svc.baseURL)
			}
		})

		t.Run("creates service with custom URL", func(t *testing.T) {
			customURL := "http://localhost:9000"
			if svc := NewAppleMusicService(customURL); svc.baseURL != customURL {
				t.Errorf("expected baseURL to be %s, got %s", customURL, svc.baseURL)
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewAppleMusicService(""); svc.Name() != "Apple Music" {
			t.Errorf("expected name to be 'Apple Music', got %s", svc.Name())
		}
	})

	t.Run("SearchSong", func(t *testing.T) {
		t.Run("prefers exact match over first result", func(t *testing.T) {
			mockResponse := map[string]any{
				"resultCount": 2,
				"results": []map[string]any{
					{
						"trackId":          111,
						"trackName":        "Flowers (Remix)",
						"artistName":       "Miley Cyrus",
						"collectionName":   "Flowers - Single",
						"primaryGenreName": "Pop",
					},
					{
						"trackId":          222,
						"trackName":        "Flowers",
						"artistName":       "Miley Cyrus",
						"collectionName":   "Endless Summer Vacation",
						"primaryGenreName": "Pop",
						"artworkUrl100":    "https://example.com/art.jpg",
						"previewUrl":       "https://example.com/preview.m4a",
						"trackTimeMillis":  200000,
					},
				},
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("expected path /search, got %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("media") != "music" || q.Get("entity") != "song" {
					t.Errorf("expected media=music&entity=song, got %s", r.URL.RawQuery)
				}
				if q.Get("term") != "Flowers Miley Cyrus" {
					t.Errorf("unexpected term: %q", q.Get("term"))
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(mockResponse)
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL)
			info, err := svc.SearchSong(context.Background(), "Flowers", "Miley Cyrus")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if info.SourceID != "222" {
				t.Errorf("expected exact match (222), got %s", info.SourceID)
			}
			if info.Album != "Endless Summer Vacation" {
				t.Errorf("unexpected album: %s", info.Album)
			}
			if info.DurationMS != 200000 {
				t.Errorf("unexpected duration: %d", info.DurationMS)
			}
		})

		t.Run("falls back to first result", func(t *testing.T) {
			mockResponse := map[string]any{
				"resultCount": 1,
				"results": []map[string]any{
					{
						"trackId":    333,
						"trackName":  "Espresso (Extended)",
						"artistName": "Sabrina Carpenter",
					},
				},
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(mockResponse)
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL)
			info, err := svc.SearchSong(context.Background(), "Espresso", "Sabrina Carpenter")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if info.SourceID != "333" {
				t.Errorf("expected first result (333), got %s", info.SourceID)
			}
		})

		t.Run("returns ErrSongNotFound for empty results", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"resultCount": 0, "results": []any{}})
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL)
			_, err := svc.SearchSong(context.Background(), "Nonexistent", "Nobody")
			if !errors.Is(err, shared.ErrSongNotFound) {
				t.Errorf("expected ErrSongNotFound, got %v", err)
			}
		})

		t.Run("surfaces rate limiting", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL)
			_, err := svc.SearchSong(context.Background(), "Flowers", "Miley Cyrus")
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("LookupSong", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/lookup" {
				t.Errorf("expected path /lookup, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("id") != "222" {
				t.Errorf("unexpected id: %q", r.URL.Query().Get("id"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"resultCount": 1,
				"results": []map[string]any{
					{"trackId": 222, "trackName": "Flowers", "artistName": "Miley Cyrus"},
				},
			})
		}))
		defer server.Close()

		svc := NewAppleMusicService(server.URL)
		info, err := svc.LookupSong(context.Background(), "222")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info.Title != "Flowers" {
			t.Errorf("unexpected title: %s", info.Title)
		}
	})
}
