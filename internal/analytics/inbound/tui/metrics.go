package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
)

// MetricCard is one headline number with a caption.
type MetricCard struct {
	Title    string
	Value    string
	Subtitle string
	// ValueStyle overrides the default white value when set.
	ValueStyle *lipgloss.Style
}

func (m MetricCard) View(width int) string {
	styles := theme.Default()

	value := styles.Bold.Render(m.Value)
	if m.ValueStyle != nil {
		value = m.ValueStyle.Render(m.Value)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Muted.Render(m.Title),
		value,
		styles.Muted.Render(m.Subtitle),
	)
	return styles.Card.Width(width).Render(content)
}

// RenderMetricCards lays cards out two per row.
func RenderMetricCards(cards []MetricCard, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}
	if totalWidth <= 0 {
		totalWidth = 80
	}
	cardWidth := max((totalWidth-4)/2, 20)

	var rows []string
	for i := 0; i < len(cards); i += 2 {
		row := []string{cards[i].View(cardWidth)}
		if i+1 < len(cards) {
			row = append(row, cards[i+1].View(cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
