package ports

import (
	"context"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// FrameSource supplies captured frames. Next blocks until a frame is
// available and returns io.EOF once the source is exhausted. Any other
// error means the device is gone.
type FrameSource interface {
	Next(ctx context.Context) (domain.Frame, error)
	Close() error
}

// EmotionClassifier returns the raw emotion label for the dominant face
// in a frame, or an empty string when no face is found.
type EmotionClassifier interface {
	Classify(ctx context.Context, frame domain.Frame) (string, error)
}

// ObjectDetector returns the raw class label of every object box in a frame.
type ObjectDetector interface {
	Detect(ctx context.Context, frame domain.Frame) ([]string, error)
}
