package domain

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EndReason records why a monitoring run stopped.
type EndReason string

const (
	EndReasonCompleted       EndReason = "completed"
	EndReasonStopped         EndReason = "stopped"
	EndReasonSourceExhausted EndReason = "source_exhausted"
	EndReasonSourceFailed    EndReason = "source_failed"
)

const sessionIDLayout = "20060102_150405"

// NewSessionID derives an id from the session start time. The random
// suffix keeps two sessions started in the same second apart.
func NewSessionID(startedAt time.Time) string {
	suffix := uuid.NewString()[:8]
	return startedAt.Format(sessionIDLayout) + "_" + suffix
}

// Frame is one image handed from the frame source to classification.
type Frame struct {
	Seq        uint64
	CapturedAt time.Time
	Data       []byte
}

// Observation is what the external classifier and detector produced for
// one sampled frame. Emotion is empty when no face was classified.
type Observation struct {
	Emotion string
	Objects []string
}

// SessionSnapshot is a consistent copy of a live session.
type SessionSnapshot struct {
	ID               string    `json:"session_id"`
	StartedAt        time.Time `json:"started_at"`
	RequestedMinutes float64   `json:"duration_minutes"`
	Counts           Counts    `json:"emotion_counts"`
	FramesSeen       int64     `json:"total_frames"`
	FacesAnalyzed    int64     `json:"total_faces_analyzed"`
	Closed           bool      `json:"closed"`
}

// SessionState accumulates label counts for one monitoring run.
//
// Every label increment is paired with one increment of the analysed
// counter under the same lock, so the sum of the counts always equals
// FacesAnalyzed. A sample that yields both an emotion and a phone counts
// twice: FacesAnalyzed counts label events, not faces.
type SessionState struct {
	mu               sync.Mutex
	id               string
	requestedMinutes float64
	startedAt        time.Time
	counts           Counts
	framesSeen       int64
	facesAnalyzed    int64
	closed           bool
}

// OpenSession starts a session that is planned to last requestedMinutes.
func OpenSession(requestedMinutes float64, now time.Time) (*SessionState, error) {
	if requestedMinutes <= 0 || math.IsNaN(requestedMinutes) || math.IsInf(requestedMinutes, 0) {
		return nil, fmt.Errorf("%w: session duration must be positive, got %v", ErrInvalidConfiguration, requestedMinutes)
	}
	return &SessionState{
		id:               NewSessionID(now),
		requestedMinutes: requestedMinutes,
		startedAt:        now,
		counts:           NewCounts(),
	}, nil
}

func (s *SessionState) ID() string { return s.id }

func (s *SessionState) StartedAt() time.Time { return s.startedAt }

func (s *SessionState) RequestedMinutes() float64 { return s.requestedMinutes }

// RecordFrameObserved counts a frame whether or not it was sampled.
func (s *SessionState) RecordFrameObserved() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.framesSeen++
	return nil
}

// RecordEmotion counts one canonical label event.
func (s *SessionState) RecordEmotion(l Label) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, l)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementLocked(l)
}

// RecordPhoneUsage counts one phone detection event.
func (s *SessionState) RecordPhoneUsage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementLocked(LabelUsingPhone)
}

func (s *SessionState) incrementLocked(l Label) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.counts[l]++
	s.facesAnalyzed++
	return nil
}

// Apply maps one observation and records both branches in a single
// critical section. It returns the labels that were counted.
func (s *SessionState) Apply(obs Observation) ([]Label, error) {
	var labels []Label
	if l, ok := MapEmotion(obs.Emotion); ok {
		labels = append(labels, l)
	}
	if MapDetection(obs.Objects) {
		labels = append(labels, LabelUsingPhone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	for _, l := range labels {
		s.counts[l]++
		s.facesAnalyzed++
	}
	return labels, nil
}

// Snapshot returns a consistent copy for live readers.
func (s *SessionState) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		ID:               s.id,
		StartedAt:        s.startedAt,
		RequestedMinutes: s.requestedMinutes,
		Counts:           s.counts.Clone(),
		FramesSeen:       s.framesSeen,
		FacesAnalyzed:    s.facesAnalyzed,
		Closed:           s.closed,
	}
}

// Close freezes the session into a record. The state rejects every
// mutation afterwards, and closing twice fails.
func (s *SessionState) Close(elapsedMinutes float64, reason EndReason, savedAt time.Time) (*SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.closed = true

	counts := s.counts.Clone()
	started := NewTimestamp(s.startedAt)
	elapsed := math.Max(elapsedMinutes, 0)
	return &SessionRecord{
		SessionID:           s.id,
		DurationMinutes:     s.requestedMinutes,
		TotalFrames:         s.framesSeen,
		TotalFacesAnalyzed:  s.facesAnalyzed,
		EmotionCounts:       counts,
		TotalEmotionSamples: counts.Sum(),
		SavedAt:             NewTimestamp(savedAt),
		StartedAt:           &started,
		ElapsedMinutes:      &elapsed,
		EndReason:           reason,
	}, nil
}
