package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

const (
	serviceName           = "mclass"
	defaultServiceVersion = "dev"
)

// Exporter pushes finished-session metrics to an OTEL Collector.
type Exporter struct {
	provider       *sdkmetric.MeterProvider
	sessionsTotal  metric.Int64Counter
	framesTotal    metric.Int64Counter
	labelsTotal    metric.Int64Counter
	engagementHist metric.Float64Histogram
	phoneHist      metric.Float64Histogram
	durationHist   metric.Float64Histogram
}

// NewExporter creates an OTLP/gRPC metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	version := cfg.ServiceVersion
	if version == "" {
		version = defaultServiceVersion
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	e, err := newExporter(sdkmetric.NewPeriodicReader(exp), res)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

func newExporter(reader sdkmetric.Reader, res *resource.Resource) (*Exporter, error) {
	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}
	provider := sdkmetric.NewMeterProvider(opts...)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider}
	var err error

	if e.sessionsTotal, err = meter.Int64Counter(
		"mclass_sessions_total",
		metric.WithDescription("Total number of saved sessions"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	if e.framesTotal, err = meter.Int64Counter(
		"mclass_session_frames_total",
		metric.WithDescription("Frames observed across sessions"),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	if e.labelsTotal, err = meter.Int64Counter(
		"mclass_session_label_events_total",
		metric.WithDescription("Label events recorded across sessions"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("creating label counter: %w", err)
	}

	if e.engagementHist, err = meter.Float64Histogram(
		"mclass_session_engagement_ratio",
		metric.WithDescription("Engagement ratio per session"),
	); err != nil {
		return nil, fmt.Errorf("creating engagement histogram: %w", err)
	}

	if e.phoneHist, err = meter.Float64Histogram(
		"mclass_session_phone_ratio",
		metric.WithDescription("Phone usage ratio per session"),
	); err != nil {
		return nil, fmt.Errorf("creating phone histogram: %w", err)
	}

	if e.durationHist, err = meter.Float64Histogram(
		"mclass_session_duration_minutes",
		metric.WithDescription("Elapsed session length"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return e, nil
}

// ExportSession records the counts and ratios of a saved session.
func (e *Exporter) ExportSession(ctx context.Context, r *domain.SessionRecord) error {
	if r == nil {
		return nil
	}
	reason := string(r.EndReason)
	if reason == "" {
		reason = "unknown"
	}
	opt := metric.WithAttributes(attribute.String("end_reason", reason))

	e.sessionsTotal.Add(ctx, 1, opt)
	e.framesTotal.Add(ctx, r.TotalFrames, opt)
	for _, l := range domain.Labels {
		e.labelsTotal.Add(ctx, r.EmotionCounts.Get(l), metric.WithAttributes(attribute.String("label", l.String())))
	}
	e.engagementHist.Record(ctx, domain.EngagementRatio(r.EmotionCounts), opt)
	e.phoneHist.Record(ctx, domain.PhoneRatio(r.EmotionCounts), opt)

	minutes := r.DurationMinutes
	if r.ElapsedMinutes != nil {
		minutes = *r.ElapsedMinutes
	}
	e.durationHist.Record(ctx, minutes, opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
