package models

import (
	"fmt"
	"strings"
	"time"
)

// Contest represents a time-boxed window during which predictions may be submitted.
type Contest struct {
	id        string
	sequence  int
	name      string
	chartName string
	opensAt   time.Time
	closesAt  time.Time
	resolved  bool
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewContest creates a Contest for the given chart and submission window.
func NewContest(sequence int, name, chartName string, opensAt, closesAt time.Time) *Contest {
	now := time.Now()
	return &Contest{
		sequence:  sequence,
		name:      name,
		chartName: chartName,
		opensAt:   opensAt,
		closesAt:  closesAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *Contest) ID() string            { return c.id }
func (c *Contest) Sequence() int         { return c.sequence }
func (c *Contest) Name() string          { return c.name }
func (c *Contest) ChartName() string     { return c.chartName }
func (c *Contest) OpensAt() time.Time    { return c.opensAt }
func (c *Contest) ClosesAt() time.Time   { return c.closesAt }
func (c *Contest) Resolved() bool        { return c.resolved }
func (c *Contest) CreatedAt() time.Time  { return c.createdAt }
func (c *Contest) UpdatedAt() time.Time  { return c.updatedAt }
func (c *Contest) DeletedAt() *time.Time { return c.deletedAt }

func (c *Contest) SetID(id string)           { c.id = id }
func (c *Contest) SetResolved(resolved bool) { c.resolved = resolved }
func (c *Contest) SetCreatedAt(t time.Time)  { c.createdAt = t }
func (c *Contest) SetUpdatedAt(t time.Time)  { c.updatedAt = t }
func (c *Contest) SetDeletedAt(t *time.Time) { c.deletedAt = t }

// IsOpen reports whether predictions may be submitted at the given time.
func (c *Contest) IsOpen(t time.Time) bool {
	return !c.resolved && !t.Before(c.opensAt) && t.Before(c.closesAt)
}

// Validate checks the contest name, chart, and window ordering.
func (c *Contest) Validate() error {
	if strings.TrimSpace(c.name) == "" {
		return fmt.Errorf("contest name is required")
	}
	if c.chartName == "" {
		return fmt.Errorf("chart name is required")
	}
	if !c.closesAt.After(c.opensAt) {
		return fmt.Errorf("contest must close after it opens")
	}
	return nil
}
