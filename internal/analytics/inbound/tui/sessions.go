package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/mclass/internal/util"
)

const pageSize = 15

// Sessions lists stored sessions newest first.
type Sessions struct {
	service  *analytics.Service
	sessions []analytics.SessionSummary
	loading  bool
	err      error
	cursor   int
	page     int
	styles   *theme.Styles
	width    int
	height   int
}

func NewSessions(service *analytics.Service) *Sessions {
	return &Sessions{
		service: service,
		loading: true,
		styles:  theme.Default(),
	}
}

func (s *Sessions) Init() tea.Cmd {
	return s.loadSessions()
}

func (s *Sessions) loadSessions() tea.Cmd {
	return func() tea.Msg {
		sessions, err := s.service.RecentSessions(context.Background())
		if err != nil {
			return sessionsErrorMsg{fmt.Errorf("load sessions: %w", err)}
		}
		return sessionsLoadedMsg{sessions}
	}
}

func (s *Sessions) Update(msg tea.Msg) (*Sessions, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		s.loading = false
		s.err = nil
		s.sessions = msg.sessions
		s.page = 0
		s.cursor = 0
		return s, nil

	case sessionsErrorMsg:
		s.loading = false
		s.err = msg.err
		return s, nil

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if s.cursor < len(s.visible())-1 {
				s.cursor++
			}
		case "k", "up":
			if s.cursor > 0 {
				s.cursor--
			}
		case "n", "pgdown":
			if (s.page+1)*pageSize < len(s.sessions) {
				s.page++
				s.cursor = 0
			}
		case "p", "pgup":
			if s.page > 0 {
				s.page--
				s.cursor = 0
			}
		case "r":
			s.loading = true
			s.err = nil
			return s, s.loadSessions()
		case "enter":
			if id := s.SelectedSessionID(); id != "" {
				return s, func() tea.Msg { return SessionSelectedMsg{SessionID: id} }
			}
		}
	}

	return s, nil
}

// visible is the current page.
func (s *Sessions) visible() []analytics.SessionSummary {
	start := min(s.page*pageSize, len(s.sessions))
	end := min(start+pageSize, len(s.sessions))
	return s.sessions[start:end]
}

func (s *Sessions) View() string {
	if s.loading {
		return s.styles.Muted.Render("Loading sessions...")
	}
	if s.err != nil {
		return s.styles.Error.Render(fmt.Sprintf("Error: %v", s.err))
	}

	title := s.styles.Title.Render("Sessions")
	if len(s.sessions) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "", s.styles.Muted.Render("No sessions recorded yet."))
	}

	page := s.visible()
	start := s.page*pageSize + 1
	pageInfo := s.styles.Muted.Render(fmt.Sprintf("Showing %d-%d of %d", start, start+len(page)-1, len(s.sessions)))

	rows := []string{s.renderHeader()}
	for i, session := range page {
		rows = append(rows, s.renderRow(session, i == s.cursor))
	}
	table := lipgloss.JoinVertical(lipgloss.Left, rows...)

	help := s.styles.Help.Render("j/k: navigate  n/p: page  enter: open  r: refresh  1: overview  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, pageInfo, "", table, help)
}

func (s *Sessions) renderHeader() string {
	header := s.styles.Muted.Bold(true)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		header.Width(26).Render("SESSION"),
		header.Width(18).Render("SAVED"),
		header.Width(9).Render("MINUTES"),
		header.Width(12).Render("ENGAGEMENT"),
		header.Width(8).Render("PHONE"),
	)
}

func (s *Sessions) renderRow(session analytics.SessionSummary, selected bool) string {
	base := s.styles.Body
	engagement := s.styles.Ratio(session.EngagementRatio)
	if selected {
		base = s.styles.Selected
		engagement = s.styles.Selected
	}

	id := session.SessionID
	if len(id) > 24 {
		id = id[:21] + "..."
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		base.Width(26).Render(id),
		base.Width(18).Render(util.FormatDateTime(session.SavedAt)),
		base.Width(9).Render(util.FormatMinutes(session.DurationMinutes)),
		engagement.Width(12).Render(util.FormatPercent(session.EngagementRatio)),
		base.Width(8).Render(util.FormatPercent(session.PhoneRatio)),
	)
}

// SelectedSessionID is empty when the list is empty.
func (s *Sessions) SelectedSessionID() string {
	page := s.visible()
	if s.cursor >= 0 && s.cursor < len(page) {
		return page[s.cursor].SessionID
	}
	return ""
}

type sessionsLoadedMsg struct {
	sessions []analytics.SessionSummary
}

type sessionsErrorMsg struct {
	err error
}

// SessionSelectedMsg opens a session in the detail screen.
type SessionSelectedMsg struct {
	SessionID string
}
