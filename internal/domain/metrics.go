package domain

import "math"

const (
	highEngagementThreshold     = 0.7
	moderateEngagementThreshold = 0.5
	phoneWarningThreshold       = 0.2
)

const (
	SuggestionHighEngagement     = "Overall engagement is high. You can maintain the current teaching pace."
	SuggestionModerateEngagement = "Engagement is moderate. Consider adding short interactive questions or activities."
	SuggestionLowEngagement      = "Engagement appears low. Try using more real-life examples, group activities, or a short break."
	SuggestionPhoneUsage         = "Phone usage is frequent. Set clear rules for devices and ask students to put phones away."
)

// Stats holds the ratios derived from one record's counts.
type Stats struct {
	EngagementRatio float64 `json:"engagement_ratio"`
	PhoneRatio      float64 `json:"phone_ratio"`
	DisengagedRatio float64 `json:"disengaged_ratio"`
}

// SessionMetrics is the per-session view served to readers.
type SessionMetrics struct {
	Suggestions []string `json:"suggestions"`
	Stats       Stats    `json:"stats"`
}

// SessionScore is one session's contribution to an aggregate.
type SessionScore struct {
	SessionID         string  `json:"session_id"`
	EngagementPercent float64 `json:"engagement_percent"`
	PhonePercent      float64 `json:"phone_percent"`
}

// Aggregate summarises a set of sessions. Every session weighs the same
// regardless of its length.
type Aggregate struct {
	Sessions       []SessionScore `json:"sessions"`
	MeanEngagement float64        `json:"mean_engagement_percent"`
	MeanPhone      float64        `json:"mean_phone_percent"`
	Grade          string         `json:"grade"`
}

// denominator floors the canonical total at 1 so an empty record yields
// zero ratios.
func denominator(c Counts) float64 {
	return float64(max(c.Total(), 1))
}

// EngagementRatio is (focused + laughing) over all canonical labels.
func EngagementRatio(c Counts) float64 {
	return float64(c.Get(LabelFocused)+c.Get(LabelLaughing)) / denominator(c)
}

// PhoneRatio is using_phone over all canonical labels.
func PhoneRatio(c Counts) float64 {
	return float64(c.Get(LabelUsingPhone)) / denominator(c)
}

// DisengagedRatio is (bored + sad) over all canonical labels.
func DisengagedRatio(c Counts) float64 {
	return float64(c.Get(LabelBored)+c.Get(LabelSad)) / denominator(c)
}

// Suggestions returns advisory messages in display order. The engagement
// band always comes first; the phone rule is evaluated on its own.
func Suggestions(c Counts) []string {
	var out []string

	switch engagement := EngagementRatio(c); {
	case engagement >= highEngagementThreshold:
		out = append(out, SuggestionHighEngagement)
	case engagement >= moderateEngagementThreshold:
		out = append(out, SuggestionModerateEngagement)
	default:
		out = append(out, SuggestionLowEngagement)
	}

	if PhoneRatio(c) > phoneWarningThreshold {
		out = append(out, SuggestionPhoneUsage)
	}

	return out
}

// ClassGrade maps a mean engagement percentage to a letter grade.
// Lower bounds are inclusive.
func ClassGrade(avgEngagementPercent float64) string {
	switch {
	case avgEngagementPercent >= 80:
		return "A"
	case avgEngagementPercent >= 65:
		return "B"
	case avgEngagementPercent >= 50:
		return "C"
	default:
		return "D"
	}
}

// ComputeMetrics derives suggestions and ratios from a record.
func ComputeMetrics(r *SessionRecord) SessionMetrics {
	var c Counts
	if r != nil {
		c = r.EmotionCounts
	}
	return SessionMetrics{
		Suggestions: Suggestions(c),
		Stats: Stats{
			EngagementRatio: EngagementRatio(c),
			PhoneRatio:      PhoneRatio(c),
			DisengagedRatio: DisengagedRatio(c),
		},
	}
}

// ComputeAggregate scores each record and grades the unweighted mean.
// The grade is taken from the exact mean; only the reported means are
// rounded to two decimals. An empty set yields a mean of 0.
func ComputeAggregate(records []*SessionRecord) Aggregate {
	agg := Aggregate{Sessions: make([]SessionScore, 0, len(records))}

	var engagementSum, phoneSum float64
	for _, r := range records {
		if r == nil {
			continue
		}
		score := SessionScore{
			SessionID:         r.SessionID,
			EngagementPercent: Round2(EngagementRatio(r.EmotionCounts) * 100),
			PhonePercent:      Round2(PhoneRatio(r.EmotionCounts) * 100),
		}
		engagementSum += score.EngagementPercent
		phoneSum += score.PhonePercent
		agg.Sessions = append(agg.Sessions, score)
	}

	n := float64(max(len(agg.Sessions), 1))
	mean := engagementSum / n
	agg.MeanEngagement = Round2(mean)
	agg.MeanPhone = Round2(phoneSum / n)
	agg.Grade = ClassGrade(mean)
	return agg
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
