package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/mclass/internal/util"
)

const barWidth = 30

// Detail shows one session's counts, ratios and suggestions.
type Detail struct {
	service   *analytics.Service
	sessionID string
	detail    *analytics.SessionDetail
	loading   bool
	err       error
	styles    *theme.Styles
	width     int
	height    int
}

func NewDetail(service *analytics.Service, sessionID string) *Detail {
	return &Detail{
		service:   service,
		sessionID: sessionID,
		loading:   true,
		styles:    theme.Default(),
	}
}

func (d *Detail) Init() tea.Cmd {
	return d.loadSession()
}

func (d *Detail) loadSession() tea.Cmd {
	id := d.sessionID
	return func() tea.Msg {
		detail, err := d.service.SessionDetail(context.Background(), id)
		if err != nil {
			return detailErrorMsg{err}
		}
		if detail == nil {
			return detailErrorMsg{fmt.Errorf("%w: %s", domain.ErrNotFound, id)}
		}
		return detailLoadedMsg{detail}
	}
}

func (d *Detail) Update(msg tea.Msg) (*Detail, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		d.loading = false
		d.err = nil
		d.detail = msg.detail
		return d, nil

	case detailErrorMsg:
		d.loading = false
		d.err = msg.err
		return d, nil

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			d.loading = true
			d.err = nil
			return d, d.loadSession()
		}
	}

	return d, nil
}

func (d *Detail) View() string {
	if d.loading {
		return d.styles.Muted.Render("Loading session...")
	}
	if d.err != nil {
		return d.styles.Error.Render(fmt.Sprintf("Error: %v", d.err))
	}

	r := d.detail.Record
	stats := d.detail.Metrics.Stats

	title := d.styles.Title.Render("Session " + r.SessionID)

	info := []string{
		d.renderField("Saved", util.FormatDateTime(r.SavedAt.Time)),
		d.renderField("Requested", util.FormatMinutes(r.DurationMinutes)),
	}
	if r.ElapsedMinutes != nil {
		info = append(info, d.renderField("Elapsed", util.FormatMinutes(*r.ElapsedMinutes)))
	}
	if r.EndReason != "" {
		info = append(info, d.renderField("Ended", string(r.EndReason)))
	}
	info = append(info,
		d.renderField("Frames", util.FormatNumber(r.TotalFrames)),
		d.renderField("Faces", util.FormatNumber(r.TotalFacesAnalyzed)),
	)

	ratios := lipgloss.JoinVertical(lipgloss.Left,
		d.styles.Subtitle.Render("Ratios"),
		d.renderStyledField("Engagement", util.FormatPercent(stats.EngagementRatio), d.styles.Ratio(stats.EngagementRatio)),
		d.renderField("Phone", util.FormatPercent(stats.PhoneRatio)),
		d.renderField("Disengaged", util.FormatPercent(stats.DisengagedRatio)),
	)

	suggestions := []string{d.styles.Subtitle.Render("Suggestions")}
	for _, s := range d.detail.Metrics.Suggestions {
		suggestions = append(suggestions, d.styles.Body.Render("• "+s))
	}

	help := d.styles.Help.Render("esc/2: back to sessions  1: overview  r: refresh  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title, "",
		lipgloss.JoinVertical(lipgloss.Left, info...), "",
		ratios, "",
		d.renderCounts(r.EmotionCounts), "",
		lipgloss.JoinVertical(lipgloss.Left, suggestions...),
		help,
	)
}

// renderCounts draws one bar per canonical label, scaled to its share.
func (d *Detail) renderCounts(c domain.Counts) string {
	total := c.Total()
	lines := []string{d.styles.Subtitle.Render("Labels")}
	for _, l := range domain.Labels {
		n := c.Get(l)
		var share float64
		if total > 0 {
			share = float64(n) / float64(total)
		}
		bar := strings.Repeat("█", int(share*barWidth+0.5))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			d.styles.Label(l).Width(14).Render(l.String()),
			d.styles.Body.Width(8).Align(lipgloss.Right).Render(util.FormatNumber(n)),
			"  ",
			d.styles.Label(l).Render(bar),
			" ",
			d.styles.Muted.Render(util.FormatPercent(share)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (d *Detail) renderField(label, value string) string {
	return d.renderStyledField(label, value, d.styles.Body)
}

func (d *Detail) renderStyledField(label, value string, style lipgloss.Style) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		d.styles.Muted.Bold(true).Width(14).Render(label+":"),
		style.Render(value),
	)
}

type detailLoadedMsg struct {
	detail *analytics.SessionDetail
}

type detailErrorMsg struct {
	err error
}
