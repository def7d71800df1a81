package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/emiliopalmerini/mclass/internal/domain"
)

// Styles contains the shared terminal report styles
type Styles struct {
	// Text styles
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	Highlight lipgloss.Style

	// Layout
	Card lipgloss.Style
	Help lipgloss.Style

	// Navigation
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Selected lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Subtitle: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(LightGray),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Highlight: lipgloss.NewStyle().
			Foreground(AccentBright).
			Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(0, 2),

		Help: lipgloss.NewStyle().
			Foreground(DimGray).
			MarginTop(1),

		Active: lipgloss.NewStyle().
			Foreground(DarkGray).
			Background(AccentBright).
			Bold(true).
			Padding(0, 1),

		Inactive: lipgloss.NewStyle().
			Foreground(LightGray),

		Selected: lipgloss.NewStyle().
			Foreground(White).
			Background(DarkGray).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),

		Info: lipgloss.NewStyle().
			Foreground(Info),
	}
}

// Grade colours a class letter grade.
func (s *Styles) Grade(grade string) lipgloss.Style {
	switch grade {
	case "A":
		return s.Success.Bold(true)
	case "B":
		return s.Info.Bold(true)
	case "C":
		return s.Warning.Bold(true)
	default:
		return s.Error.Bold(true)
	}
}

// Ratio colours an engagement ratio by the suggestion band it falls in.
func (s *Styles) Ratio(engagement float64) lipgloss.Style {
	switch {
	case engagement >= 0.7:
		return s.Success
	case engagement >= 0.5:
		return s.Warning
	default:
		return s.Error
	}
}

// Label colours a label by whether it counts toward engagement.
func (s *Styles) Label(l domain.Label) lipgloss.Style {
	switch l {
	case domain.LabelFocused, domain.LabelLaughing:
		return lipgloss.NewStyle().Foreground(Success)
	case domain.LabelUsingPhone:
		return lipgloss.NewStyle().Foreground(Phone)
	default:
		return lipgloss.NewStyle().Foreground(Disengaged)
	}
}
