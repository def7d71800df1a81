package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
)

// SessionRecord is the durable, immutable form of a finished session.
type SessionRecord struct {
	SessionID           string     `json:"session_id"`
	DurationMinutes     float64    `json:"duration_minutes"`
	TotalFrames         int64      `json:"total_frames"`
	TotalFacesAnalyzed  int64      `json:"total_faces_analyzed"`
	EmotionCounts       Counts     `json:"emotion_counts"`
	TotalEmotionSamples int64      `json:"total_emotion_samples"`
	SavedAt             Timestamp  `json:"saved_at"`
	StartedAt           *Timestamp `json:"started_at,omitempty"`
	ElapsedMinutes      *float64   `json:"elapsed_minutes,omitempty"`
	EndReason           EndReason  `json:"end_reason,omitempty"`
}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidSessionID reports whether id is safe to use as a storage key.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Validate checks the structural invariants of a record.
func (r *SessionRecord) Validate() error {
	var errs []error
	if !ValidSessionID(r.SessionID) {
		errs = append(errs, fmt.Errorf("invalid session_id %q", r.SessionID))
	}
	if r.DurationMinutes < 0 || math.IsNaN(r.DurationMinutes) || math.IsInf(r.DurationMinutes, 0) {
		errs = append(errs, fmt.Errorf("invalid duration_minutes %v", r.DurationMinutes))
	}
	if r.TotalFrames < 0 {
		errs = append(errs, fmt.Errorf("negative total_frames %d", r.TotalFrames))
	}
	if r.TotalFacesAnalyzed < 0 {
		errs = append(errs, fmt.Errorf("negative total_faces_analyzed %d", r.TotalFacesAnalyzed))
	}
	if r.EmotionCounts == nil {
		errs = append(errs, errors.New("missing emotion_counts"))
	}
	for l, v := range r.EmotionCounts {
		if v < 0 {
			errs = append(errs, fmt.Errorf("negative count %d for %q", v, l))
		}
	}
	if sum := r.EmotionCounts.Sum(); sum != r.TotalEmotionSamples {
		errs = append(errs, fmt.Errorf("total_emotion_samples %d does not match counts sum %d", r.TotalEmotionSamples, sum))
	}
	if r.SavedAt.IsZero() {
		errs = append(errs, errors.New("missing saved_at"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCorruptRecord, errors.Join(errs...))
	}
	return nil
}

// EncodeRecord serialises r with total_emotion_samples recomputed from
// the counts. The caller's record is not modified.
func EncodeRecord(r *SessionRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrCorruptRecord)
	}
	out := *r
	out.EmotionCounts = r.EmotionCounts.Clone()
	out.TotalEmotionSamples = out.EmotionCounts.Sum()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(&out, "", "    ")
}

// recordWire mirrors SessionRecord with pointer fields so absent keys
// can be told apart from zero values.
type recordWire struct {
	SessionID           *string          `json:"session_id"`
	DurationMinutes     *float64         `json:"duration_minutes"`
	TotalFrames         *int64           `json:"total_frames"`
	TotalFacesAnalyzed  *int64           `json:"total_faces_analyzed"`
	EmotionCounts       map[string]int64 `json:"emotion_counts"`
	TotalEmotionSamples *int64           `json:"total_emotion_samples"`
	SavedAt             *Timestamp       `json:"saved_at"`
	StartedAt           *Timestamp       `json:"started_at"`
	ElapsedMinutes      *float64         `json:"elapsed_minutes"`
	EndReason           EndReason        `json:"end_reason"`
}

// DecodeRecord parses a stored record. Truncated input, missing required
// fields and inconsistent totals all fail with ErrCorruptRecord; a
// half-populated record is never returned.
func DecodeRecord(data []byte) (*SessionRecord, error) {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	var missing []string
	if w.SessionID == nil {
		missing = append(missing, "session_id")
	}
	if w.DurationMinutes == nil {
		missing = append(missing, "duration_minutes")
	}
	if w.TotalFrames == nil {
		missing = append(missing, "total_frames")
	}
	if w.TotalFacesAnalyzed == nil {
		missing = append(missing, "total_faces_analyzed")
	}
	if w.EmotionCounts == nil {
		missing = append(missing, "emotion_counts")
	}
	if w.TotalEmotionSamples == nil {
		missing = append(missing, "total_emotion_samples")
	}
	if w.SavedAt == nil {
		missing = append(missing, "saved_at")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %v", ErrCorruptRecord, missing)
	}

	counts := make(Counts, len(w.EmotionCounts))
	for k, v := range w.EmotionCounts {
		counts[Label(k)] = v
	}

	r := &SessionRecord{
		SessionID:           *w.SessionID,
		DurationMinutes:     *w.DurationMinutes,
		TotalFrames:         *w.TotalFrames,
		TotalFacesAnalyzed:  *w.TotalFacesAnalyzed,
		EmotionCounts:       counts,
		TotalEmotionSamples: *w.TotalEmotionSamples,
		SavedAt:             *w.SavedAt,
		StartedAt:           w.StartedAt,
		ElapsedMinutes:      w.ElapsedMinutes,
		EndReason:           w.EndReason,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// SortNewestFirst orders records by saved_at descending, ties broken by id.
func SortNewestFirst(records []*SessionRecord) {
	slices.SortStableFunc(records, func(a, b *SessionRecord) int {
		if c := b.SavedAt.Compare(a.SavedAt.Time); c != 0 {
			return c
		}
		switch {
		case a.SessionID > b.SessionID:
			return -1
		case a.SessionID < b.SessionID:
			return 1
		}
		return 0
	})
}
