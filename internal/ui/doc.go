// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing cached charts:
//  1. [ChartListView] : Browse cached weeks of the default chart
//  2. [EntryListView] : Inspect a week's entries and toggle favorites
//  3. [ConfirmView] : Confirm song enrichment
//  4. [EnrichView] : Monitor real-time enrichment progress
//  5. [ResultView] : Display enrichment counts and failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ChartEngine, providing non-blocking status
// reporting during enrichment.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, y/n, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
