package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// ChartRepository caches chart weeks fetched from the provider.
//
// Chart weeks are immutable snapshots keyed by (chart_name, week), so the
// repository exposes Save/Get/Weeks instead of the generic CRUD surface.
// Saving a week that already exists replaces its entries.
type ChartRepository struct {
	db *sql.DB
}

// NewChartRepository creates a new [ChartRepository] with the given database connection
func NewChartRepository(db *sql.DB) *ChartRepository {
	return &ChartRepository{db: db}
}

// Save caches a chart week and its entries in a single transaction.
// An existing snapshot for the same (chart, week) is replaced.
func (r *ChartRepository) Save(chart *models.Chart) error {
	if chart.Name == "" || chart.Week == "" {
		return fmt.Errorf("%w: chart name and week are required", shared.ErrInvalidInput)
	}

	var chartID string
	err := r.db.QueryRow("SELECT id FROM charts WHERE chart_name = ? AND week = ? AND deleted_at IS NULL",
		chart.Name, chart.Week).Scan(&chartID)

	exists := true
	var sequence int
	switch {
	case err == sql.ErrNoRows:
		exists = false
		if sequence, err = NextSequence(r.db, "charts"); err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query chart: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if exists {
		if _, err := tx.Exec("UPDATE charts SET updated_at = ? WHERE id = ?", now, chartID); err != nil {
			return fmt.Errorf("failed to touch chart: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM chart_entries WHERE chart_id = ?", chartID); err != nil {
			return fmt.Errorf("failed to clear chart entries: %w", err)
		}
	} else {
		chartID = shared.GenerateID()
		_, err = tx.Exec("INSERT INTO charts (id, sequence, chart_name, week, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			chartID, sequence, chart.Name, chart.Week, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert chart: %w", err)
		}
	}

	for _, e := range chart.Entries {
		_, err := tx.Exec("INSERT INTO chart_entries (chart_id, position, last_week, peak, weeks_on, title, artist) VALUES (?, ?, ?, ?, ?, ?, ?)",
			chartID, e.Position, e.LastWeek, e.Peak, e.WeeksOn, e.Title, e.Artist)
		if err != nil {
			return fmt.Errorf("failed to insert chart entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chart: %w", err)
	}

	return nil
}

// Get retrieves a cached chart week with its entries in position order.
// Returns ErrChartNotFound when the week is not cached.
func (r *ChartRepository) Get(chartName, week string) (*models.Chart, error) {
	var chartID string
	err := r.db.QueryRow("SELECT id FROM charts WHERE chart_name = ? AND week = ? AND deleted_at IS NULL",
		chartName, week).Scan(&chartID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s week %s", shared.ErrChartNotFound, chartName, week)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chart: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT position, last_week, peak, weeks_on, title, artist
		FROM chart_entries
		WHERE chart_id = ?
		ORDER BY position ASC
	`, chartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chart entries: %w", err)
	}
	defer rows.Close()

	chart := &models.Chart{Name: chartName, Week: week}
	for rows.Next() {
		var e models.ChartEntry
		if err := rows.Scan(&e.Position, &e.LastWeek, &e.Peak, &e.WeeksOn, &e.Title, &e.Artist); err != nil {
			return nil, fmt.Errorf("failed to scan chart entry: %w", err)
		}
		chart.Entries = append(chart.Entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chart, nil
}

// Latest retrieves the most recent cached week for a chart.
func (r *ChartRepository) Latest(chartName string) (*models.Chart, error) {
	var week string
	err := r.db.QueryRow(`
		SELECT week FROM charts
		WHERE chart_name = ? AND deleted_at IS NULL
		ORDER BY week DESC LIMIT 1
	`, chartName).Scan(&week)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrChartNotFound, chartName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest week: %w", err)
	}

	return r.Get(chartName, week)
}

// Weeks lists the cached weeks for a chart, most recent first.
func (r *ChartRepository) Weeks(chartName string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT week FROM charts
		WHERE chart_name = ? AND deleted_at IS NULL
		ORDER BY week DESC
	`, chartName)
	if err != nil {
		return nil, fmt.Errorf("failed to query weeks: %w", err)
	}
	defer rows.Close()

	var weeks []string
	for rows.Next() {
		var week string
		if err := rows.Scan(&week); err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		weeks = append(weeks, week)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return weeks, nil
}
