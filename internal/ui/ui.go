package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ChartListView ViewState = iota
	EntryListView
	ConfirmView
	EnrichView
	ResultView
)

// ChartBrowser loads cached chart weeks for browsing.
// Implemented by repositories.ChartRepository.
type ChartBrowser interface {
	Weeks(chartName string) ([]string, error)
	Get(chartName, week string) (*models.Chart, error)
}

// FavoriteStore toggles favorites from the entry list.
// Implemented by repositories.FavoriteRepository.
type FavoriteStore interface {
	Toggle(favorite *models.Favorite) (bool, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	charts        ChartBrowser
	favorites     FavoriteStore
	engine        *tasks.ChartEngine
	chartName     string
	userID        string
	width         int
	height        int
	weekList      list.Model
	entryList     list.Model
	selectedChart *models.Chart
	status        string
	progressChan  chan tasks.ProgressUpdate
	progress      tasks.ProgressUpdate
	result        *tasks.EnrichResult
	err           error
	help          help.Model
	keys          keyMap
}

type weeksFetchedMsg struct {
	weeks []string
	err   error
}

type chartFetchedMsg struct {
	chart *models.Chart
	err   error
}

type favoriteToggledMsg struct {
	entry     models.ChartEntry
	favorited bool
	err       error
}

type progressUpdateMsg tasks.ProgressUpdate

type enrichCompleteMsg struct {
	result *tasks.EnrichResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, charts ChartBrowser, favorites FavoriteStore, engine *tasks.ChartEngine, chartName, userID string) *Model {
	return &Model{
		ctx:       ctx,
		view:      ChartListView,
		charts:    charts,
		favorites: favorites,
		engine:    engine,
		chartName: chartName,
		userID:    userID,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by loading the cached weeks of the default chart.
func (m *Model) Init() tea.Cmd {
	return m.fetchWeeks()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.weekList.Width() == 0 {
			m.weekList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.entryList.Width() == 0 {
			m.entryList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ChartListView:
			return m.handleChartListKeys(msg)
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case weeksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.weeks))
		for i, week := range msg.weeks {
			items[i] = weekItem{chartName: m.chartName, week: week}
		}
		m.weekList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.weekList.Title = fmt.Sprintf("Cached weeks of %s", m.chartName)
		m.weekList.SetSize(m.width-4, m.height-8)
		return m, nil

	case chartFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ChartListView
			return m, nil
		}
		m.selectedChart = msg.chart
		items := make([]list.Item, len(msg.chart.Entries))
		for i, entry := range msg.chart.Entries {
			items[i] = entryItem{entry: entry}
		}
		m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.entryList.Title = fmt.Sprintf("%s week %s", msg.chart.Name, msg.chart.Week)
		m.entryList.SetSize(m.width-4, m.height-8)
		m.status = ""
		m.view = EntryListView
		return m, nil

	case favoriteToggledMsg:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Favorite failed: %v", msg.err))
			return m, nil
		}
		if msg.favorited {
			m.status = styles.ok.Render(fmt.Sprintf("★ Favorited %s - %s", msg.entry.Artist, msg.entry.Title))
		} else {
			m.status = styles.warn.Render(fmt.Sprintf("Removed favorite %s - %s", msg.entry.Artist, msg.entry.Title))
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case enrichCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		// the enrich goroutine closed the channel before this message was emitted
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ChartListView:
		return m.renderWeekList()
	case EntryListView:
		return m.renderEntryList()
	case ConfirmView:
		return m.renderConfirm()
	case EnrichView:
		return m.renderEnrich()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleChartListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.weekList.SelectedItem()
		if selected != nil {
			if wk, ok := selected.(weekItem); ok {
				return m, m.fetchChart(wk.week)
			}
		}
	}

	var cmd tea.Cmd
	m.weekList, cmd = m.weekList.Update(msg)
	return m, cmd
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ChartListView
		return m, nil
	case "f":
		selected := m.entryList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(entryItem); ok {
				return m, m.toggleFavorite(item.entry)
			}
		}
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = EntryListView
		return m, nil
	case "y":
		m.view = EnrichView
		return m, m.startEnrich()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = ChartListView
		m.selectedChart = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ChartListView:
		m.weekList, cmd = m.weekList.Update(msg)
	case EntryListView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchWeeks() tea.Cmd {
	return func() tea.Msg {
		weeks, err := m.charts.Weeks(m.chartName)
		return weeksFetchedMsg{weeks: weeks, err: err}
	}
}

func (m *Model) fetchChart(week string) tea.Cmd {
	return func() tea.Msg {
		chart, err := m.charts.Get(m.chartName, week)
		return chartFetchedMsg{chart: chart, err: err}
	}
}

func (m *Model) toggleFavorite(entry models.ChartEntry) tea.Cmd {
	return func() tea.Msg {
		if m.favorites == nil {
			return favoriteToggledMsg{entry: entry, err: fmt.Errorf("favorites unavailable")}
		}
		favorite := models.NewFavorite(0, m.userID, entry.Title, entry.Artist, m.selectedChart.Name, m.selectedChart.Week)
		favorited, err := m.favorites.Toggle(favorite)
		return favoriteToggledMsg{entry: entry, favorited: favorited, err: err}
	}
}

func (m *Model) startEnrich() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Enrich(m.ctx, m.selectedChart, tasks.EnrichOpts{}, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return enrichCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return enrichCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderWeekList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.weekList.View(), helpView)
}

func (m *Model) renderEntryList() string {
	enrichKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "enrich"),
	)
	helpKeys := []key.Binding{enrichKey, m.keys.fave, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.status != "" {
		return fmt.Sprintf("%s\n\n%s\n%s", m.entryList.View(), m.status, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.entryList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Enrich '%s' week %s with song metadata?", m.selectedChart.Name, m.selectedChart.Week))
	info := fmt.Sprintf("\nChart: %s\nEntries: %d\n", m.selectedChart.Name, len(m.selectedChart.Entries))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderEnrich() string {
	title := styles.title.Render("Enriching Chart")

	var phase string
	switch m.progress.Phase {
	case tasks.EnrichSongs:
		phase = fmt.Sprintf("Enriching songs (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Enrichment failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Enrichment Complete!")
	info := fmt.Sprintf(
		"\nChart: %s week %s\nEnriched: %d\nServed from cache: %d\nFailed: %d",
		m.result.ChartName,
		m.result.Week,
		m.result.Enriched,
		m.result.Skipped,
		m.result.Failed,
	)

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to enrich %d songs:", m.result.Failed)))
		for _, failure := range m.result.Failures {
			failed += fmt.Sprintf("\n  • %s - %s", failure.Artist, failure.Title)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
