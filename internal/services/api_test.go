package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIService(t *testing.T) {
	t.Run("NewAPIService", func(t *testing.T) {
		t.Run("defaults base URL and client", func(t *testing.T) {
			svc := NewAPIService("", nil)
			if svc.baseURL != defaultProviderBaseURL {
				t.Errorf("expected default base URL, got %s", svc.baseURL)
			}
			if svc.httpClient == nil {
				t.Error("expected default HTTP client")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("returns JSON response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/charts" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				if r.Header.Get("Cookie") != "session=abc" {
					t.Errorf("expected session header, got %q", r.Header.Get("Cookie"))
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"ok": true})
			}))
			defer server.Close()

			svc := NewAPIService(server.URL, server.Client())
			svc.SetHeaders(map[string]string{"Cookie": "session=abc"})

			resp, err := svc.Get(context.Background(), "/v1/charts")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected JSON response")
			}
			data, ok := resp.JSONData.(map[string]any)
			if !ok || data["ok"] != true {
				t.Errorf("unexpected JSON data: %v", resp.JSONData)
			}
		})

		t.Run("handles non-JSON bodies", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "plain text")
			}))
			defer server.Close()

			svc := NewAPIService(server.URL, nil)
			resp, err := svc.Get(context.Background(), "/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected non-JSON response")
			}
			if string(resp.Body) != "plain text" {
				t.Errorf("unexpected body: %q", resp.Body)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"week":"2024-03-09"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"created": true})
		}))
		defer server.Close()

		svc := NewAPIService(server.URL, nil)
		resp, err := svc.Post(context.Background(), "/v1/sync", []byte(`{"week":"2024-03-09"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected 201, got %d", resp.StatusCode)
		}
		if !resp.IsJSON {
			t.Error("expected JSON response")
		}
	})
}
