package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// DropPolicy decides which frame is lost when the classification queue is full.
type DropPolicy string

const (
	// DropNewest discards the frame being offered and keeps the queue as is.
	DropNewest DropPolicy = "drop-newest"
	// DropOldest evicts the frame at the head of the queue to make room.
	DropOldest DropPolicy = "drop-oldest"
)

const DefaultQueueSize = 4

// ParseDropPolicy accepts either policy name.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch p := DropPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DropNewest, DropOldest:
		return p, nil
	case "":
		return DropNewest, nil
	default:
		return "", fmt.Errorf("%w: unknown drop policy %q", domain.ErrInvalidConfiguration, s)
	}
}

// Config bounds one monitoring run.
type Config struct {
	Duration       time.Duration
	SampleInterval time.Duration
	QueueSize      int
	DropPolicy     DropPolicy
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: session duration must be positive, got %s", domain.ErrInvalidConfiguration, c.Duration)
	}
	if c.SampleInterval < 0 {
		return fmt.Errorf("%w: sample interval must not be negative", domain.ErrInvalidConfiguration)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be at least 1", domain.ErrInvalidConfiguration)
	}
	if _, err := ParseDropPolicy(string(c.DropPolicy)); err != nil {
		return err
	}
	return nil
}
