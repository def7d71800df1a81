package ports

import (
	"context"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// MetricsExporter exports finished sessions to an external observability system.
type MetricsExporter interface {
	// ExportSession exports the counts and ratios of a saved session.
	ExportSession(ctx context.Context, record *domain.SessionRecord) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// PipelineObserver receives live counters from a monitoring run.
type PipelineObserver interface {
	FrameRead()
	FrameSampled()
	FrameDropped()
	ClassificationSkipped(stage string)
	LabelRecorded(label domain.Label)
	QueueDepth(n int)
}
