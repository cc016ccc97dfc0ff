package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

var (
	_ list.Item = weekItem{}
	_ list.Item = entryItem{}
)

// weekItem wraps a cached chart week to implement [list.Item].
type weekItem struct {
	chartName string
	week      string
}

func (i weekItem) FilterValue() string { return i.week }
func (i weekItem) Title() string       { return i.week }
func (i weekItem) Description() string {
	return fmt.Sprintf("%s week of %s", i.chartName, i.week)
}

// entryItem wraps [models.ChartEntry] to implement [list.Item].
type entryItem struct {
	entry models.ChartEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string {
	return fmt.Sprintf("%d. %s", i.entry.Position, i.entry.Title)
}
func (i entryItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.entry.Artist, shared.FormatMovement(i.entry.Position, i.entry.LastWeek))
	if i.entry.WeeksOn > 1 {
		desc = fmt.Sprintf("%s • %d weeks on", desc, i.entry.WeeksOn)
	}
	return desc
}
