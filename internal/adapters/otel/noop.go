package otel

import (
	"context"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// NoOpExporter discards session metrics. Used when MCLASS_OTEL_ENABLED is off.
type NoOpExporter struct{}

func NewNoOpExporter() *NoOpExporter { return &NoOpExporter{} }

func (*NoOpExporter) ExportSession(context.Context, *domain.SessionRecord) error { return nil }

func (*NoOpExporter) Close(context.Context) error { return nil }
