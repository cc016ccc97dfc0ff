package shared

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCurl = `curl 'https://www.chartwatch.dev/charts/hot-100' \
  -H 'accept: application/json' \
  -H 'user-agent: Mozilla/5.0' \
  -H 'x-requested-with: XMLHttpRequest' \
  -b 'session=abc123; theme=dark'`

func TestParseCurlCommand(t *testing.T) {
	t.Run("headers and cookie", func(t *testing.T) {
		parsed, err := ParseCurlCommand([]byte(sampleCurl))
		if err != nil {
			t.Fatalf("ParseCurlCommand failed: %v", err)
		}

		if parsed.Headers["accept"] != "application/json" {
			t.Errorf("expected accept header, got %q", parsed.Headers["accept"])
		}
		if parsed.Headers["user-agent"] != "Mozilla/5.0" {
			t.Errorf("expected user-agent header, got %q", parsed.Headers["user-agent"])
		}
		if parsed.Cookie != "session=abc123; theme=dark" {
			t.Errorf("expected cookie, got %q", parsed.Cookie)
		}
	})

	t.Run("cookie via header", func(t *testing.T) {
		cmd := `curl 'https://example.com' -H 'cookie: session=xyz' -H 'accept: text/html'`
		parsed, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("ParseCurlCommand failed: %v", err)
		}
		if parsed.Cookie != "session=xyz" {
			t.Errorf("expected cookie from header, got %q", parsed.Cookie)
		}
		if _, ok := parsed.Headers["cookie"]; ok {
			t.Error("cookie should not appear in the headers map")
		}
	})

	t.Run("no headers", func(t *testing.T) {
		if _, err := ParseCurlCommand([]byte("curl 'https://example.com'")); err == nil {
			t.Error("expected error for curl command without headers")
		}
	})
}

func TestParseCurlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sh")
	if err := os.WriteFile(path, []byte(sampleCurl), 0644); err != nil {
		t.Fatalf("failed to write curl file: %v", err)
	}

	parsed, err := ParseCurlFile(path)
	if err != nil {
		t.Fatalf("ParseCurlFile failed: %v", err)
	}
	if len(parsed.Headers) == 0 {
		t.Error("expected headers from file")
	}

	if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "missing.sh")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCurlHeadersMap(t *testing.T) {
	parsed := &CurlHeaders{
		Headers: map[string]string{"accept": "application/json"},
		Cookie:  "session=abc",
	}

	m := parsed.Map()
	if m["accept"] != "application/json" {
		t.Errorf("expected accept header in map, got %q", m["accept"])
	}
	if m["Cookie"] != "session=abc" {
		t.Errorf("expected cookie folded into map, got %q", m["Cookie"])
	}
}
