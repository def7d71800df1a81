package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/web/templates"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingSession), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) render(ctx context.Context, w http.ResponseWriter, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(ctx, w); err != nil {
		s.logger.Error("failed to render page", "status", status, "error", err)
	}
}

func (s *Server) renderError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	s.render(ctx, w, status, templates.ErrorPage(status, msg))
}

func buildSessionsData(report analytics.ClassReport) templates.SessionsData {
	page := templates.SessionsData{
		Sessions:       make([]templates.SessionRow, 0, len(report.Sessions)),
		MeanEngagement: report.Aggregate.MeanEngagement,
		MeanPhone:      report.Aggregate.MeanPhone,
		Grade:          report.Aggregate.Grade,
	}
	for _, s := range report.Sessions {
		page.Sessions = append(page.Sessions, templates.SessionRow{
			ID:         s.SessionID,
			SavedAt:    s.SavedAt,
			Duration:   s.DurationMinutes,
			Frames:     s.TotalFrames,
			Samples:    s.TotalSamples,
			Engagement: s.EngagementRatio,
			Phone:      s.PhoneRatio,
		})
	}
	return page
}

func buildSessionData(d *analytics.SessionDetail) templates.SessionData {
	r := d.Record
	total := r.EmotionCounts.Total()

	page := templates.SessionData{
		ID:          r.SessionID,
		SavedAt:     r.SavedAt.Time,
		Duration:    r.DurationMinutes,
		Elapsed:     r.ElapsedMinutes,
		EndReason:   string(r.EndReason),
		Frames:      r.TotalFrames,
		Faces:       r.TotalFacesAnalyzed,
		Samples:     r.TotalEmotionSamples,
		Engagement:  d.Metrics.Stats.EngagementRatio,
		Phone:       d.Metrics.Stats.PhoneRatio,
		Disengaged:  d.Metrics.Stats.DisengagedRatio,
		Suggestions: d.Metrics.Suggestions,
	}
	for _, l := range domain.Labels {
		c := templates.LabelCount{Label: l.String(), Count: r.EmotionCounts.Get(l)}
		if total > 0 {
			c.Share = float64(c.Count) / float64(total)
		}
		page.Counts = append(page.Counts, c)
	}
	return page
}

func buildCompareData(cmp domain.Comparison) *templates.CompareData {
	page := &templates.CompareData{SessionA: cmp.SessionA, SessionB: cmp.SessionB}
	for i, l := range cmp.Labels {
		page.Rows = append(page.Rows, templates.CompareRow{
			Label: l.String(),
			A:     cmp.A[i],
			B:     cmp.B[i],
			Delta: cmp.Delta[i],
		})
	}
	return page
}
