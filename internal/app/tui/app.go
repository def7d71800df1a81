package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mclass/internal/analytics"
	analyticstui "github.com/emiliopalmerini/mclass/internal/analytics/inbound/tui"
	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
)

// Screen identifies the current screen
type Screen int

const (
	ScreenOverview Screen = iota
	ScreenSessions
	ScreenDetail
)

// App is the dashboard root model. It owns navigation and forwards every
// other message to the active screen.
type App struct {
	service       *analytics.Service
	currentScreen Screen
	overview      *analyticstui.Overview
	sessions      *analyticstui.Sessions
	detail        *analyticstui.Detail
	styles        *theme.Styles
	width         int
	height        int
}

func NewApp(service *analytics.Service) *App {
	return &App{
		service:       service,
		currentScreen: ScreenOverview,
		overview:      analyticstui.NewOverview(service),
		sessions:      analyticstui.NewSessions(service),
		styles:        theme.Default(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.overview.Init()
}

// Screen reports the active screen.
func (a *App) Screen() Screen { return a.currentScreen }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			if a.currentScreen != ScreenOverview {
				a.currentScreen = ScreenOverview
				return a, a.overview.Init()
			}
			return a, nil
		case "2":
			if a.currentScreen != ScreenSessions {
				a.currentScreen = ScreenSessions
				return a, a.sessions.Init()
			}
			return a, nil
		case "esc":
			if a.currentScreen == ScreenDetail {
				a.currentScreen = ScreenSessions
			}
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case analyticstui.SessionSelectedMsg:
		a.detail = analyticstui.NewDetail(a.service, msg.SessionID)
		a.currentScreen = ScreenDetail
		return a, a.detail.Init()
	}

	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenOverview:
		a.overview, cmd = a.overview.Update(msg)
	case ScreenSessions:
		a.sessions, cmd = a.sessions.Update(msg)
	case ScreenDetail:
		if a.detail != nil {
			a.detail, cmd = a.detail.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) View() string {
	var content string
	switch a.currentScreen {
	case ScreenOverview:
		content = a.overview.View()
	case ScreenSessions:
		content = a.sessions.View()
	case ScreenDetail:
		if a.detail != nil {
			content = a.detail.View()
		}
	}

	sep := a.styles.Muted.Render("────────────────────────────────────────────────────────────────")
	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), sep, "", content)
}

func (a *App) renderHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		a.styles.Title.Render("MCLASS"),
		"  ",
		a.styles.Muted.Render("Session Engagement"),
	)
}

func (a *App) renderNav() string {
	return NewNavBar([]NavItem{
		{Key: "1", Label: "Overview", Active: a.currentScreen == ScreenOverview},
		{Key: "2", Label: "Sessions", Active: a.currentScreen == ScreenSessions || a.currentScreen == ScreenDetail},
	}).View()
}
