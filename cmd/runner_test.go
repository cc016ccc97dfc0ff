package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mstride/chartx/internal/services"
	"github.com/mstride/chartx/internal/shared"
	tu "github.com/mstride/chartx/internal/testing"
)

// testRunner creates a Runner wired to a temp database with migrations applied.
func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "chartx_test.db")
	config.Profile.Email = "listener@example.com"
	config.Profile.Name = "Listener"

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Provider: &tu.MockService{},
		Output:   output,
	})

	db, err := runner.openDB()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return runner, output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			provider := &tu.MockService{}
			search := services.NewAppleMusicService("")
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Provider:   provider,
				Search:     search,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.provider != provider {
				t.Error("expected provider to be set")
			}
			if runner.search != search {
				t.Error("expected search to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be created")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("defaultChart", func(t *testing.T) {
		t.Run("falls back to hot-100", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Provider.DefaultChart = ""
			runner := NewRunner(RunnerOpts{Config: config})

			if got := runner.defaultChart(); got != "hot-100" {
				t.Errorf("expected hot-100, got %q", got)
			}
		})

		t.Run("uses configured chart", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Provider.DefaultChart = "top-albums"
			runner := NewRunner(RunnerOpts{Config: config})

			if got := runner.defaultChart(); got != "top-albums" {
				t.Errorf("expected top-albums, got %q", got)
			}
		})
	})

	t.Run("currentUser", func(t *testing.T) {
		t.Run("creates profile user on first use", func(t *testing.T) {
			runner, _ := testRunner(t)

			db, err := runner.openDB()
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()

			user, err := runner.currentUser(db)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Email() != "listener@example.com" {
				t.Errorf("expected profile email, got %q", user.Email())
			}
			if user.ID() == "" {
				t.Error("expected created user to have an ID")
			}
		})

		t.Run("returns existing user on subsequent calls", func(t *testing.T) {
			runner, _ := testRunner(t)

			db, err := runner.openDB()
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()

			first, err := runner.currentUser(db)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			second, err := runner.currentUser(db)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if first.ID() != second.ID() {
				t.Errorf("expected the same user, got %s and %s", first.ID(), second.ID())
			}
		})

		t.Run("errors without profile email", func(t *testing.T) {
			runner, _ := testRunner(t)
			runner.config.Profile.Email = ""

			db, err := runner.openDB()
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()

			if _, err := runner.currentUser(db); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	})
}
