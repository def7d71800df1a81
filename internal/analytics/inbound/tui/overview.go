package tui

import (
	"context"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/mclass/internal/util"
)

// Overview shows the class grade and the headline means.
type Overview struct {
	service *analytics.Service
	report  analytics.ClassReport
	loading bool
	err     error
	styles  *theme.Styles
	width   int
	height  int
}

func NewOverview(service *analytics.Service) *Overview {
	return &Overview{
		service: service,
		loading: true,
		styles:  theme.Default(),
	}
}

func (o *Overview) Init() tea.Cmd {
	return o.loadReport()
}

func (o *Overview) loadReport() tea.Cmd {
	return func() tea.Msg {
		report, err := o.service.ClassReport(context.Background())
		if err != nil {
			return reportErrorMsg{fmt.Errorf("load class report: %w", err)}
		}
		return reportLoadedMsg{report}
	}
}

func (o *Overview) Update(msg tea.Msg) (*Overview, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		o.loading = false
		o.err = nil
		o.report = msg.report
		return o, nil

	case reportErrorMsg:
		o.loading = false
		o.err = msg.err
		return o, nil

	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height
		return o, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			o.loading = true
			o.err = nil
			return o, o.loadReport()
		}
	}

	return o, nil
}

func (o *Overview) View() string {
	if o.loading {
		return o.styles.Muted.Render("Loading class report...")
	}
	if o.err != nil {
		return o.styles.Error.Render(fmt.Sprintf("Error: %v", o.err))
	}

	title := o.styles.Title.Render("Class Overview")
	help := o.styles.Help.Render("r: refresh  2: sessions  q: quit")

	if len(o.report.Sessions) == 0 {
		empty := o.styles.Muted.Render("No sessions recorded yet. Run `mclass record` to add one.")
		return lipgloss.JoinVertical(lipgloss.Left, title, "", empty, help)
	}

	agg := o.report.Aggregate
	gradeStyle := o.styles.Grade(agg.Grade)
	engagementStyle := o.styles.Ratio(agg.MeanEngagement / 100)
	cards := []MetricCard{
		{Title: "Class grade", Value: agg.Grade, Subtitle: "A >= 80%  B >= 65%  C >= 50%", ValueStyle: &gradeStyle},
		{Title: "Sessions", Value: fmt.Sprintf("%d", len(o.report.Sessions)), Subtitle: "Each weighs the same"},
		{Title: "Mean engagement", Value: fmt.Sprintf("%.2f%%", agg.MeanEngagement), Subtitle: "focused + laughing", ValueStyle: &engagementStyle},
		{Title: "Mean phone usage", Value: fmt.Sprintf("%.2f%%", agg.MeanPhone), Subtitle: "using_phone"},
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title, "",
		RenderMetricCards(cards, o.width), "",
		o.trend(),
		help,
	)
}

// trend plots per-session engagement oldest to newest.
func (o *Overview) trend() string {
	sessions := slices.Clone(o.report.Sessions)
	slices.Reverse(sessions)

	ratios := make([]float64, len(sessions))
	for i, s := range sessions {
		ratios[i] = s.EngagementRatio
	}

	first := util.FormatDateTime(sessions[0].SavedAt)
	last := util.FormatDateTime(sessions[len(sessions)-1].SavedAt)
	return lipgloss.JoinVertical(lipgloss.Left,
		o.styles.Subtitle.Render("ENGAGEMENT TREND"),
		o.styles.Bold.Render(RenderSparkline(ratios)),
		o.styles.Muted.Render(first+" → "+last),
	)
}

type reportLoadedMsg struct {
	report analytics.ClassReport
}

type reportErrorMsg struct {
	err error
}
