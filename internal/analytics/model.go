package analytics

import (
	"time"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// SessionSummary is a lightweight session for list views
type SessionSummary struct {
	SessionID       string    `json:"session_id"`
	SavedAt         time.Time `json:"saved_at"`
	DurationMinutes float64   `json:"duration_minutes"`
	TotalFrames     int64     `json:"total_frames"`
	TotalSamples    int64     `json:"total_emotion_samples"`
	EngagementRatio float64   `json:"engagement_ratio"`
	PhoneRatio      float64   `json:"phone_ratio"`
}

// Summarize builds the list view of a record.
func Summarize(r *domain.SessionRecord) SessionSummary {
	return SessionSummary{
		SessionID:       r.SessionID,
		SavedAt:         r.SavedAt.Time,
		DurationMinutes: r.DurationMinutes,
		TotalFrames:     r.TotalFrames,
		TotalSamples:    r.TotalEmotionSamples,
		EngagementRatio: domain.EngagementRatio(r.EmotionCounts),
		PhoneRatio:      domain.PhoneRatio(r.EmotionCounts),
	}
}

// SessionDetail is one record with its derived metrics
type SessionDetail struct {
	Record  *domain.SessionRecord `json:"record"`
	Metrics domain.SessionMetrics `json:"metrics"`
}

// ClassReport covers every stored session, newest first
type ClassReport struct {
	Sessions  []SessionSummary `json:"sessions"`
	Aggregate domain.Aggregate `json:"aggregate"`
}
