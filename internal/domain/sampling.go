package domain

import "time"

// DefaultSampleInterval is the minimum gap between two classified frames.
const DefaultSampleInterval = 800 * time.Millisecond

// ShouldSample reports whether a frame observed at now may be classified,
// given the time of the last accepted sample. A zero last is treated as
// the infinite past, so the first frame is always eligible.
func ShouldSample(now, last time.Time, minInterval time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= minInterval
}

// Sampler keeps the last-sample time for ShouldSample. It is not safe for
// concurrent use; the capture loop owns it.
type Sampler struct {
	Interval time.Duration
	last     time.Time
}

func NewSampler(interval time.Duration) *Sampler {
	return &Sampler{Interval: interval}
}

// Admit decides for the frame at now and advances the last-sample time
// only when the frame is accepted.
func (s *Sampler) Admit(now time.Time) bool {
	if !ShouldSample(now, s.last, s.Interval) {
		return false
	}
	s.last = now
	return true
}
