package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

func TestChartEngine_BulkExport(t *testing.T) {
	charts := map[string]*models.Chart{
		chartKey("hot-100", "2024-03-02"): testWeek("2024-03-02",
			models.ChartEntry{Position: 1, Title: "Flowers", Artist: "Miley Cyrus", Peak: 1, WeeksOn: 8}),
		chartKey("hot-100", "2024-03-09"): testWeek("2024-03-09",
			models.ChartEntry{Position: 1, Title: "Espresso", Artist: "Sabrina Carpenter", Peak: 1, WeeksOn: 1}),
	}

	t.Run("exports every week and writes a manifest", func(t *testing.T) {
		provider := &mockService{charts: charts}
		engine := NewChartEngine(provider, nil, nil)

		outputDir := filepath.Join(t.TempDir(), "export")
		result, err := engine.BulkExport(context.Background(), nil, provider, "hot-100",
			[]string{"2024-03-02", "2024-03-09"},
			BulkExportOpts{Format: "json", OutputDir: outputDir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("expected 2 successful exports, got %d/%d",
				result.SuccessfulExports, result.FailedExports)
		}

		for _, week := range []string{"2024-03-02", "2024-03-09"} {
			path := filepath.Join(outputDir, "hot-100_"+week+".json")
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected export file %s: %v", path, err)
			}
		}
		if _, err := os.Stat(result.ManifestPath); err != nil {
			t.Errorf("expected manifest at %s: %v", result.ManifestPath, err)
		}
	})

	t.Run("records fetch failures without aborting the run", func(t *testing.T) {
		provider := &mockService{charts: charts}
		engine := NewChartEngine(provider, nil, nil)

		outputDir := filepath.Join(t.TempDir(), "export")
		result, err := engine.BulkExport(context.Background(), nil, provider, "hot-100",
			[]string{"2024-03-09", "2024-06-01"},
			BulkExportOpts{Format: "txt", OutputDir: outputDir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected 1 success and 1 failure, got %d/%d",
				result.SuccessfulExports, result.FailedExports)
		}

		var failed bool
		for _, res := range result.Results {
			if !res.Success && res.Week == "2024-06-01" && res.Error != nil {
				failed = true
			}
		}
		if !failed {
			t.Error("expected the missing week to be recorded as a failure")
		}
	})

	t.Run("csv format writes entries and metadata files", func(t *testing.T) {
		provider := &mockService{charts: charts}
		engine := NewChartEngine(provider, nil, nil)

		outputDir := filepath.Join(t.TempDir(), "export")
		result, err := engine.BulkExport(context.Background(), nil, provider, "hot-100",
			[]string{"2024-03-09"},
			BulkExportOpts{Format: "csv", OutputDir: outputDir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 1 {
			t.Fatalf("expected 1 successful export, got %d", result.SuccessfulExports)
		}
		if len(result.Results[0].Files) != 2 {
			t.Errorf("expected entries and metadata files, got %v", result.Results[0].Files)
		}
	})

	t.Run("requires a service", func(t *testing.T) {
		engine := NewChartEngine(&mockService{}, nil, nil)
		_, err := engine.BulkExport(context.Background(), nil, nil, "hot-100", nil, BulkExportOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
