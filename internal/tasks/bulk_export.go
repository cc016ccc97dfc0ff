package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mstride/chartx/internal/formatter"
	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/services"
	"github.com/mstride/chartx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk chart exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: chart_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Provider requests per second (default: 5)
}

// chartExportJob carries one fetched chart week to the export workers.
type chartExportJob struct {
	Week  string
	Chart *models.Chart
}

// BulkExport exports multiple chart weeks concurrently with rate limiting and progress tracking.
//
// This method implements a worker pool pattern to efficiently export multiple weeks.
// It respects provider rate limits, handles partial failures gracefully, and generates
// a manifest file summarizing the export results.
func (e *ChartEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	srv services.Service,
	chartName string,
	weeks []string,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if srv == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("chart_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &formatter.BulkExportResult{
		TotalWeeks:      len(weeks),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.WeekExportResult, 0, len(weeks)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan chartExportJob, len(weeks))
	results := make(chan formatter.WeekExportResult, len(weeks))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, week := range weeks {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			chart, err := srv.GetChart(ctx, chartName, week)
			if err != nil {
				results <- formatter.WeekExportResult{
					ChartName: chartName,
					Week:      week,
					Success:   false,
					Error:     fmt.Errorf("failed to fetch chart: %w", err),
				}
				continue
			}

			jobs <- chartExportJob{Week: week, Chart: chart}

			e.sendProgress(prog, exportingChartUpdate(i+1, len(weeks), chartName, week))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(
				completed,
				len(weeks),
				fmt.Sprintf("%s %s", res.ChartName, res.Week),
				len(res.Files),
			))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(
				completed,
				len(weeks),
				fmt.Sprintf("%s %s", res.ChartName, res.Week),
				res.Error,
			))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports chart weeks from the jobs channel.
func (e *ChartEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan chartExportJob,
	results chan<- formatter.WeekExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.exportSingleWeek(job, opts)
		results <- res
	}
}

// exportSingleWeek exports a single chart week to the appropriate format.
func (e *ChartEngine) exportSingleWeek(j chartExportJob, opts BulkExportOpts) formatter.WeekExportResult {
	result := formatter.WeekExportResult{
		ChartName: j.Chart.Name,
		Week:      j.Chart.Week,
		Success:   false,
		Files:     []string{},
	}

	base := fmt.Sprintf("%s_%s", j.Chart.Name, j.Chart.Week)

	switch opts.Format {
	case "csv":
		baseFilepath := filepath.Join(opts.OutputDir, base)
		csvRes, err := formatter.WriteCSVExport(j.Chart, nil, baseFilepath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.EntriesFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, base)
		mdRes, err := formatter.WriteMarkdownExport(j.Chart, nil, outputDir, "")
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, base+".txt")
		path, err := formatter.WriteTextExport(j.Chart, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, base+".json")
		data, err := shared.MarshalJSON(j.Chart, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}
