package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/mclass/internal/util"
)

func printSessionTable(out io.Writer, sessions []analytics.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tMINUTES\tFRAMES\tSAMPLES\tENGAGEMENT\tPHONE")
	fmt.Fprintln(w, "--\t-----\t-------\t------\t-------\t----------\t-----")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			s.SessionID,
			util.FormatDateTime(s.SavedAt),
			util.FormatMinutes(s.DurationMinutes),
			s.TotalFrames,
			s.TotalSamples,
			util.FormatPercent(s.EngagementRatio),
			util.FormatPercent(s.PhoneRatio),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nShowing %d session(s)\n", len(sessions))
}

func printSessionDetail(out io.Writer, d *analytics.SessionDetail) {
	st := theme.Default()
	r := d.Record

	fmt.Fprintln(out, st.Title.Render("Session "+r.SessionID))
	fmt.Fprintf(out, "Saved:      %s\n", util.FormatDateTime(r.SavedAt.Time))
	fmt.Fprintf(out, "Duration:   %s requested", util.FormatMinutes(r.DurationMinutes))
	if r.ElapsedMinutes != nil {
		fmt.Fprintf(out, ", %s elapsed", util.FormatMinutes(*r.ElapsedMinutes))
	}
	fmt.Fprintln(out)
	if r.EndReason != "" {
		fmt.Fprintf(out, "Ended:      %s\n", r.EndReason)
	}
	fmt.Fprintf(out, "Frames:     %d\n", r.TotalFrames)
	fmt.Fprintf(out, "Faces:      %d\n", r.TotalFacesAnalyzed)
	fmt.Fprintln(out)

	fmt.Fprintln(out, st.Subtitle.Render("Labels"))
	total := r.EmotionCounts.Total()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, l := range domain.Labels {
		n := r.EmotionCounts.Get(l)
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total)
		}
		fmt.Fprintf(w, "  %s\t%d\t%s\n", st.Label(l).Render(l.String()), n, util.FormatPercent(share))
	}
	w.Flush()
	fmt.Fprintln(out)

	stats := d.Metrics.Stats
	fmt.Fprintln(out, st.Subtitle.Render("Metrics"))
	fmt.Fprintf(out, "  Engagement:  %s\n", st.Ratio(stats.EngagementRatio).Render(util.FormatPercent(stats.EngagementRatio)))
	fmt.Fprintf(out, "  Phone:       %s\n", util.FormatPercent(stats.PhoneRatio))
	fmt.Fprintf(out, "  Disengaged:  %s\n", util.FormatPercent(stats.DisengagedRatio))
	fmt.Fprintln(out)

	printSuggestions(out, d.Metrics.Suggestions)
}

func printSuggestions(out io.Writer, suggestions []string) {
	st := theme.Default()
	fmt.Fprintln(out, st.Subtitle.Render("Suggestions"))
	for _, s := range suggestions {
		fmt.Fprintf(out, "  - %s\n", s)
	}
}

func printComparison(out io.Writer, cmp domain.Comparison) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "LABEL\t%s\t%s\tDELTA\t\n", cmp.SessionA, cmp.SessionB)
	for i, l := range cmp.Labels {
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\t\n", l, cmp.A[i], cmp.B[i], cmp.Delta[i])
	}
	w.Flush()
}

func printClassReport(out io.Writer, report analytics.ClassReport) {
	st := theme.Default()
	agg := report.Aggregate

	if len(agg.Sessions) == 0 {
		fmt.Fprintln(out, "No sessions found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tENGAGEMENT %\tPHONE %")
	fmt.Fprintln(w, "-------\t------------\t-------")
	for _, s := range agg.Sessions {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", s.SessionID, s.EngagementPercent, s.PhonePercent)
	}
	w.Flush()
	fmt.Fprintln(out)

	card := fmt.Sprintf("Sessions:         %d\nMean engagement:  %.2f%%\nMean phone usage: %.2f%%\nClass grade:      %s",
		len(agg.Sessions), agg.MeanEngagement, agg.MeanPhone, st.Grade(agg.Grade).Render(agg.Grade))
	fmt.Fprintln(out, st.Card.Render(card))
}

func printRecordSummary(out io.Writer, r *domain.SessionRecord) {
	st := theme.Default()
	m := domain.ComputeMetrics(r)

	fmt.Fprintln(out, st.Title.Render("Session "+r.SessionID+" saved"))
	fmt.Fprintf(out, "Ended:       %s\n", r.EndReason)
	fmt.Fprintf(out, "Frames:      %d\n", r.TotalFrames)
	fmt.Fprintf(out, "Samples:     %d\n", r.TotalEmotionSamples)
	fmt.Fprintf(out, "Engagement:  %s\n", st.Ratio(m.Stats.EngagementRatio).Render(util.FormatPercent(m.Stats.EngagementRatio)))
	fmt.Fprintf(out, "Phone:       %s\n", util.FormatPercent(m.Stats.PhoneRatio))
	fmt.Fprintln(out)
	printSuggestions(out, m.Suggestions)
}
