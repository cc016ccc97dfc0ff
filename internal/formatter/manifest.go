package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/mstride/chartx/internal/shared"
)

// WeekExportResult records the outcome of exporting a single chart week.
type WeekExportResult struct {
	ChartName string   // Chart the week belongs to
	Week      string   // Week that was exported
	Success   bool     // Whether the export succeeded
	Files     []string // Files written for this week
	Error     error    // Failure cause when Success is false
}

// BulkExportResult summarizes a bulk export run across chart weeks.
type BulkExportResult struct {
	TotalWeeks        int                // Weeks requested
	SuccessfulExports int                // Weeks exported successfully
	FailedExports     int                // Weeks that failed
	OutputDirectory   string             // Base output directory
	ManifestPath      string             // Path of the written manifest
	Results           []WeekExportResult // Per-week outcomes
}

type manifestEntry struct {
	ChartName string   `json:"chart_name"`
	Week      string   `json:"week"`
	Success   bool     `json:"success"`
	Files     []string `json:"files,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type manifest struct {
	GeneratedAt       string          `json:"generated_at"`
	Format            string          `json:"format"`
	OutputDirectory   string          `json:"output_directory"`
	TotalWeeks        int             `json:"total_weeks"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Results           []manifestEntry `json:"results"`
}

// WriteBulkExportManifest writes a JSON manifest summarizing a bulk export run.
func WriteBulkExportManifest(result *BulkExportResult, format, path string) error {
	m := manifest{
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		Format:            format,
		OutputDirectory:   result.OutputDirectory,
		TotalWeeks:        result.TotalWeeks,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Results:           make([]manifestEntry, len(result.Results)),
	}

	for i, r := range result.Results {
		entry := manifestEntry{
			ChartName: r.ChartName,
			Week:      r.Week,
			Success:   r.Success,
			Files:     r.Files,
		}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		m.Results[i] = entry
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
