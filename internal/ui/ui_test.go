package ui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/tasks"
)

type stubBrowser struct {
	weeks  []string
	charts map[string]*models.Chart // keyed by week
}

func (s *stubBrowser) Weeks(chartName string) ([]string, error) {
	return s.weeks, nil
}

func (s *stubBrowser) Get(chartName, week string) (*models.Chart, error) {
	if chart, ok := s.charts[week]; ok {
		return chart, nil
	}
	return nil, fmt.Errorf("chart not found: %s", week)
}

type stubFavorites struct {
	toggles int
}

func (s *stubFavorites) Toggle(favorite *models.Favorite) (bool, error) {
	s.toggles++
	return s.toggles%2 == 1, nil
}

type stubSearcher struct {
	calls int
}

func (s *stubSearcher) SearchSong(ctx context.Context, title, artist string) (*models.SongInfo, error) {
	s.calls++
	return &models.SongInfo{Title: title, Artist: artist, Album: "Test Album"}, nil
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// runEnrich pumps the message loop from startEnrich until the completion
// message has been handled, the way the bubbletea runtime would.
func runEnrich(t *testing.T, m *Model) *Model {
	t.Helper()

	cmd := m.startEnrich()
	for i := 0; i < 100 && cmd != nil; i++ {
		msg := cmd()
		model, next := m.Update(msg)
		m = model.(*Model)
		if _, done := msg.(enrichCompleteMsg); done {
			return m
		}
		cmd = next
	}

	t.Fatal("enrichment never completed")
	return nil
}

func TestModelEnrichFlow(t *testing.T) {
	chart := &models.Chart{
		Name: "hot-100",
		Week: "2024-03-09",
		Entries: []models.ChartEntry{
			{Position: 1, Title: "Flowers", Artist: "Miley Cyrus"},
			{Position: 2, Title: "Espresso", Artist: "Sabrina Carpenter"},
		},
	}

	newEnrichingModel := func(searcher *stubSearcher) *Model {
		browser := &stubBrowser{
			weeks:  []string{"2024-03-09"},
			charts: map[string]*models.Chart{"2024-03-09": chart},
		}
		engine := tasks.NewChartEngine(nil, searcher, nil)
		m := NewModel(context.Background(), browser, &stubFavorites{}, engine, "hot-100", "user-1")
		m.selectedChart = chart
		m.view = EnrichView
		return m
	}

	t.Run("completes into the result view", func(t *testing.T) {
		searcher := &stubSearcher{}
		m := runEnrich(t, newEnrichingModel(searcher))

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if m.err != nil {
			t.Fatalf("expected no error, got %v", m.err)
		}
		if m.result == nil || m.result.Enriched != 2 {
			t.Fatalf("unexpected result: %+v", m.result)
		}
		if searcher.calls != 2 {
			t.Errorf("expected 2 search calls, got %d", searcher.calls)
		}
		if m.progressChan != nil {
			t.Error("expected progress channel to be released after completion")
		}
	})

	t.Run("completion after progress updates does not panic", func(t *testing.T) {
		m := newEnrichingModel(&stubSearcher{})

		cmd := m.startEnrich()
		sawProgress := false
		for i := 0; i < 100 && cmd != nil; i++ {
			msg := cmd()
			if _, ok := msg.(progressUpdateMsg); ok {
				sawProgress = true
			}
			model, next := m.Update(msg)
			m = model.(*Model)
			if _, done := msg.(enrichCompleteMsg); done {
				cmd = nil
				break
			}
			cmd = next
		}

		if !sawProgress {
			t.Error("expected at least one progress update before completion")
		}
		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}

		// a stale waitForProgress command after completion must also resolve cleanly
		msg := m.waitForProgress()()
		if _, ok := msg.(enrichCompleteMsg); !ok {
			t.Errorf("expected completion message from drained channel, got %T", msg)
		}
	})

	t.Run("restart returns to the week list", func(t *testing.T) {
		m := runEnrich(t, newEnrichingModel(&stubSearcher{}))

		model, _ := m.Update(keyPress('r'))
		m = model.(*Model)

		if m.view != ChartListView {
			t.Errorf("expected chart list view after restart, got %v", m.view)
		}
		if m.result != nil || m.selectedChart != nil {
			t.Error("expected restart to clear the previous run")
		}
	})
}

func TestModelFavoriteToggle(t *testing.T) {
	chart := &models.Chart{
		Name:    "hot-100",
		Week:    "2024-03-09",
		Entries: []models.ChartEntry{{Position: 1, Title: "Flowers", Artist: "Miley Cyrus"}},
	}

	favorites := &stubFavorites{}
	m := NewModel(context.Background(), &stubBrowser{}, favorites, nil, "hot-100", "user-1")
	m.selectedChart = chart

	msg := m.toggleFavorite(chart.Entries[0])()
	toggled, ok := msg.(favoriteToggledMsg)
	if !ok {
		t.Fatalf("expected favoriteToggledMsg, got %T", msg)
	}
	if toggled.err != nil {
		t.Fatalf("expected no error, got %v", toggled.err)
	}
	if !toggled.favorited {
		t.Error("expected first toggle to favorite the entry")
	}
	if favorites.toggles != 1 {
		t.Errorf("expected 1 toggle call, got %d", favorites.toggles)
	}
}
