package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/ports"
)

// Monitor runs one session: a capture goroutine feeds sampled frames into
// a bounded queue drained by a classification worker. Capture never blocks
// on the queue; when it is full a frame is dropped per Config.DropPolicy.
type Monitor struct {
	cfg        Config
	source     ports.FrameSource
	classifier ports.EmotionClassifier
	detector   ports.ObjectDetector
	store      ports.SessionRecordStore
	exporter   ports.MetricsExporter
	observer   ports.PipelineObserver
	archive    ports.FrameArchive
	logger     *slog.Logger
	now        func() time.Time

	state atomic.Pointer[domain.SessionState]
}

type Option func(*Monitor)

func WithExporter(e ports.MetricsExporter) Option {
	return func(m *Monitor) { m.exporter = e }
}

func WithObserver(o ports.PipelineObserver) Option {
	return func(m *Monitor) { m.observer = o }
}

// WithFrameArchive keeps the image of every frame that produced a label.
// Frames without image data are not archived.
func WithFrameArchive(a ports.FrameArchive) Option {
	return func(m *Monitor) { m.archive = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New validates cfg and wires the collaborators of a run.
func New(cfg Config, source ports.FrameSource, classifier ports.EmotionClassifier, detector ports.ObjectDetector, store ports.SessionRecordStore, opts ...Option) (*Monitor, error) {
	if cfg.DropPolicy == "" {
		cfg.DropPolicy = DropNewest
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil || classifier == nil || detector == nil || store == nil {
		return nil, fmt.Errorf("%w: source, classifier, detector and store are required", domain.ErrInvalidConfiguration)
	}

	m := &Monitor{
		cfg:        cfg,
		source:     source,
		classifier: classifier,
		detector:   detector,
		store:      store,
		exporter:   nopExporter{},
		observer:   nopObserver{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Snapshot returns a consistent view of the running session. The second
// result is false before Run has opened a session.
func (m *Monitor) Snapshot() (domain.SessionSnapshot, bool) {
	s := m.state.Load()
	if s == nil {
		return domain.SessionSnapshot{}, false
	}
	return s.Snapshot(), true
}

// Run monitors until the session duration elapses, ctx is cancelled or the
// source ends. Every path closes and saves the session; the record is
// returned even when an error is. A lost frame source yields an error
// wrapping domain.ErrFrameSourceUnavailable.
func (m *Monitor) Run(ctx context.Context) (*domain.SessionRecord, error) {
	startedAt := m.now()
	state, err := domain.OpenSession(m.cfg.Duration.Minutes(), startedAt)
	if err != nil {
		return nil, err
	}
	m.state.Store(state)

	log := m.logger.With("session_id", state.ID())
	log.Info("session started",
		"duration", m.cfg.Duration,
		"sample_interval", m.cfg.SampleInterval,
		"queue_size", m.cfg.QueueSize,
		"drop_policy", m.cfg.DropPolicy,
	)

	runCtx, cancel := context.WithTimeout(ctx, m.cfg.Duration)
	defer cancel()

	queue := make(chan domain.Frame, m.cfg.QueueSize)
	var reason domain.EndReason

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer close(queue)
		return m.capture(gctx, state, queue, &reason)
	})
	g.Go(func() error {
		return m.classify(gctx, state, queue, log)
	})
	runErr := g.Wait()

	if reason == "" {
		switch {
		case ctx.Err() != nil:
			reason = domain.EndReasonStopped
		default:
			reason = domain.EndReasonCompleted
		}
	}

	savedAt := m.now()
	record, err := state.Close(savedAt.Sub(startedAt).Minutes(), reason, savedAt)
	if err != nil {
		return nil, errors.Join(runErr, err)
	}

	// The run context may already be cancelled; saving must still happen.
	persistCtx := context.WithoutCancel(ctx)
	if err := m.store.Put(persistCtx, record); err != nil {
		log.Error("failed to save session", "error", err)
		return record, errors.Join(runErr, fmt.Errorf("failed to save session %s: %w", record.SessionID, err))
	}
	if err := m.exporter.ExportSession(persistCtx, record); err != nil {
		log.Warn("failed to export session metrics", "error", err)
	}

	log.Info("session saved",
		"end_reason", reason,
		"frames", record.TotalFrames,
		"label_events", record.TotalEmotionSamples,
		"engagement", domain.EngagementRatio(record.EmotionCounts),
	)
	return record, runErr
}

func (m *Monitor) capture(ctx context.Context, state *domain.SessionState, queue chan domain.Frame, reason *domain.EndReason) error {
	sampler := domain.NewSampler(m.cfg.SampleInterval)

	for {
		frame, err := m.source.Next(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, io.EOF):
				*reason = domain.EndReasonSourceExhausted
				return nil
			default:
				*reason = domain.EndReasonSourceFailed
				return fmt.Errorf("%w: %w", domain.ErrFrameSourceUnavailable, err)
			}
		}

		m.observer.FrameRead()
		if err := state.RecordFrameObserved(); err != nil {
			return err
		}

		at := frame.CapturedAt
		if at.IsZero() {
			at = m.now()
		}
		if !sampler.Admit(at) {
			continue
		}
		m.observer.FrameSampled()
		m.enqueue(queue, frame)
		m.observer.QueueDepth(len(queue))
	}
}

// enqueue offers a frame without blocking. Under DropNewest a full queue
// loses the offered frame; under DropOldest it loses its head instead.
func (m *Monitor) enqueue(queue chan domain.Frame, frame domain.Frame) {
	select {
	case queue <- frame:
		return
	default:
	}

	if m.cfg.DropPolicy == DropOldest {
		m.replaceOldest(queue, frame)
		return
	}
	m.observer.FrameDropped()
}

// replaceOldest evicts the queue head to make room for frame. The worker
// may have emptied the queue in the meantime, in which case nothing is
// evicted and no drop is counted. Capture is the only sender, so the retry
// only fails if the worker is not keeping up at all.
func (m *Monitor) replaceOldest(queue chan domain.Frame, frame domain.Frame) {
	evicted := false
	select {
	case <-queue:
		evicted = true
	default:
	}

	select {
	case queue <- frame:
		if evicted {
			m.observer.FrameDropped()
		}
	default:
		m.observer.FrameDropped()
	}
}

func (m *Monitor) classify(ctx context.Context, state *domain.SessionState, queue <-chan domain.Frame, log *slog.Logger) error {
	log.Debug("classification worker started")
	defer log.Debug("classification worker stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-queue:
			if !ok {
				return nil
			}
			m.observer.QueueDepth(len(queue))
			if err := m.process(ctx, state, frame, log); err != nil {
				return err
			}
		}
	}
}

// process classifies one sampled frame. A failing branch is skipped on its
// own; the other branch still counts.
func (m *Monitor) process(ctx context.Context, state *domain.SessionState, frame domain.Frame, log *slog.Logger) error {
	var obs domain.Observation

	emotion, err := m.classifier.Classify(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		m.skip(log, "emotion", frame, err)
	} else {
		obs.Emotion = emotion
	}

	objects, err := m.detector.Detect(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		m.skip(log, "detection", frame, err)
	} else {
		obs.Objects = objects
	}

	labels, err := state.Apply(obs)
	if err != nil {
		return err
	}
	for _, l := range labels {
		m.observer.LabelRecorded(l)
		m.archiveFrame(ctx, state.ID(), l, frame, log)
	}
	return nil
}

// archiveFrame failures are logged; the counts already stand.
func (m *Monitor) archiveFrame(ctx context.Context, sessionID string, label domain.Label, frame domain.Frame, log *slog.Logger) {
	if m.archive == nil || len(frame.Data) == 0 {
		return
	}
	if err := m.archive.Archive(ctx, sessionID, label, frame); err != nil && ctx.Err() == nil {
		log.Warn("failed to archive frame", "label", label, "seq", frame.Seq, "error", err)
	}
}

func (m *Monitor) skip(log *slog.Logger, stage string, frame domain.Frame, err error) {
	m.observer.ClassificationSkipped(stage)
	log.Warn("sample skipped",
		"stage", stage,
		"seq", frame.Seq,
		"error", fmt.Errorf("%w: %w", domain.ErrClassificationSkipped, err),
	)
}

type nopExporter struct{}

func (nopExporter) ExportSession(context.Context, *domain.SessionRecord) error { return nil }
func (nopExporter) Close(context.Context) error                                { return nil }

type nopObserver struct{}

func (nopObserver) FrameRead()                   {}
func (nopObserver) FrameSampled()                {}
func (nopObserver) FrameDropped()                {}
func (nopObserver) QueueDepth(int)               {}
func (nopObserver) ClassificationSkipped(string) {}
func (nopObserver) LabelRecorded(domain.Label)   {}
