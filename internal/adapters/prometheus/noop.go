package prometheus

import "github.com/emiliopalmerini/mclass/internal/domain"

// NoOpCollector discards pipeline events.
type NoOpCollector struct{}

// NewNoOpCollector creates a new no-op collector for runs without a listener.
func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (NoOpCollector) FrameRead()                   {}
func (NoOpCollector) FrameSampled()                {}
func (NoOpCollector) FrameDropped()                {}
func (NoOpCollector) QueueDepth(int)               {}
func (NoOpCollector) ClassificationSkipped(string) {}
func (NoOpCollector) LabelRecorded(domain.Label)   {}
