package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/mclass/internal/adapters/storage"
	"github.com/emiliopalmerini/mclass/internal/analytics"
	analyticstui "github.com/emiliopalmerini/mclass/internal/analytics/inbound/tui"
	"github.com/emiliopalmerini/mclass/internal/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := storage.NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecordStore: %v", err)
	}
	for i, id := range []string{"older", "newer"} {
		rec := &domain.SessionRecord{
			SessionID:          id,
			DurationMinutes:    30,
			TotalFrames:        10,
			TotalFacesAnalyzed: 4,
			EmotionCounts:      domain.Counts{domain.LabelFocused: 3, domain.LabelUsingPhone: 1},
			SavedAt:            domain.NewTimestamp(time.Date(2025, 4, 1, 9+i, 0, 0, 0, time.UTC)),
		}
		if err := store.Put(context.Background(), rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return NewApp(analytics.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// step feeds msg to the app and runs any command it returns once.
func step(t *testing.T, a *App, msg tea.Msg) tea.Msg {
	t.Helper()
	_, cmd := a.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_Navigation(t *testing.T) {
	a := newTestApp(t)
	a.Update(a.Init()())

	if a.Screen() != ScreenOverview {
		t.Fatalf("start screen = %v", a.Screen())
	}
	if view := a.View(); !strings.Contains(view, "MCLASS") || !strings.Contains(view, "Class Overview") {
		t.Errorf("overview view:\n%s", view)
	}

	loaded := step(t, a, key("2"))
	if a.Screen() != ScreenSessions {
		t.Fatalf("after 2: screen = %v", a.Screen())
	}
	a.Update(loaded)

	selected := step(t, a, key("enter"))
	if msg, ok := selected.(analyticstui.SessionSelectedMsg); !ok || msg.SessionID != "newer" {
		t.Fatalf("enter emitted %#v, want newest session", selected)
	}
	detail := step(t, a, selected)
	if a.Screen() != ScreenDetail {
		t.Fatalf("after selection: screen = %v", a.Screen())
	}
	a.Update(detail)
	if view := a.View(); !strings.Contains(view, "Session newer") {
		t.Errorf("detail view:\n%s", view)
	}

	a.Update(key("esc"))
	if a.Screen() != ScreenSessions {
		t.Errorf("esc from detail: screen = %v", a.Screen())
	}

	a.Update(key("esc"))
	if a.Screen() != ScreenSessions {
		t.Errorf("esc outside detail moved to %v", a.Screen())
	}

	reload := step(t, a, key("1"))
	if a.Screen() != ScreenOverview {
		t.Errorf("after 1: screen = %v", a.Screen())
	}
	a.Update(reload)
	if view := a.View(); !strings.Contains(view, "Class grade") {
		t.Errorf("overview after return:\n%s", view)
	}
}

func TestApp_SameScreenKeyIsNoop(t *testing.T) {
	a := newTestApp(t)
	if _, cmd := a.Update(key("1")); cmd != nil {
		t.Error("pressing 1 on the overview should not reload")
	}
}

func TestApp_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		a := newTestApp(t)
		if msg, ok := step(t, a, k).(tea.QuitMsg); !ok {
			t.Errorf("%s: got %#v, want quit", k, msg)
		}
	}
}

func TestNavBar(t *testing.T) {
	view := NewNavBar([]NavItem{
		{Key: "1", Label: "Overview", Active: true},
		{Key: "2", Label: "Sessions"},
	}).View()
	for _, want := range []string{"Overview", "[2] Sessions"} {
		if !strings.Contains(view, want) {
			t.Errorf("nav bar missing %q: %s", want, view)
		}
	}
	if strings.Contains(view, "[1]") {
		t.Errorf("active tab shows its key hint: %s", view)
	}
}
