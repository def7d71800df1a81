package replay

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// Source replays scripted frames in order.
type Source struct {
	script *Script
	now    func() time.Time

	mu     sync.Mutex
	next   uint64
	closed bool
}

func NewSource(script *Script) *Source {
	return &Source{script: script, now: time.Now}
}

// Next returns the next frame, io.EOF at the end of a non-looping script,
// or the scripted source error.
func (s *Source) Next(ctx context.Context) (domain.Frame, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Frame{}, errors.New("replay source closed")
	}
	seq := s.next
	if !s.script.Loop && seq >= uint64(len(s.script.Frames)) {
		s.mu.Unlock()
		return domain.Frame{}, io.EOF
	}
	s.next++
	s.mu.Unlock()

	if err := sleep(ctx, s.script.FrameInterval); err != nil {
		return domain.Frame{}, err
	}

	f := s.script.frame(seq)
	if f.SourceError != "" {
		return domain.Frame{}, errors.New(f.SourceError)
	}
	return domain.Frame{Seq: seq, CapturedAt: s.now(), Data: f.data}, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Classifier returns the scripted emotion for a frame.
type Classifier struct {
	script *Script
}

func NewClassifier(script *Script) *Classifier {
	return &Classifier{script: script}
}

func (c *Classifier) Classify(ctx context.Context, frame domain.Frame) (string, error) {
	if err := sleep(ctx, c.script.Latency); err != nil {
		return "", err
	}
	f := c.script.frame(frame.Seq)
	if f.EmotionErr != "" {
		return "", errors.New(f.EmotionErr)
	}
	return f.Emotion, nil
}

// Detector returns the scripted object labels for a frame.
type Detector struct {
	script *Script
}

func NewDetector(script *Script) *Detector {
	return &Detector{script: script}
}

func (d *Detector) Detect(ctx context.Context, frame domain.Frame) ([]string, error) {
	if err := sleep(ctx, d.script.Latency); err != nil {
		return nil, err
	}
	f := d.script.frame(frame.Seq)
	if f.DetectErr != "" {
		return nil, errors.New(f.DetectErr)
	}
	return f.Objects, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
