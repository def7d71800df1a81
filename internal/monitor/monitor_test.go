package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// fakeSource emits count frames step apart, then ends with err, or blocks
// until cancelled when block is set.
type fakeSource struct {
	mu          sync.Mutex
	count       int
	step        time.Duration
	err         error
	block       bool
	data        []byte
	onExhausted func()
	emitted     int
}

func (s *fakeSource) Next(ctx context.Context) (domain.Frame, error) {
	s.mu.Lock()
	if s.emitted < s.count {
		seq := s.emitted
		s.emitted++
		s.mu.Unlock()
		return domain.Frame{Seq: uint64(seq), CapturedAt: base.Add(time.Duration(seq) * s.step), Data: s.data}, nil
	}
	s.mu.Unlock()

	if s.onExhausted != nil {
		s.onExhausted()
	}
	if s.block {
		<-ctx.Done()
		return domain.Frame{}, ctx.Err()
	}
	if s.err != nil {
		return domain.Frame{}, s.err
	}
	return domain.Frame{}, io.EOF
}

func (s *fakeSource) Close() error { return nil }

type classifierFunc func(ctx context.Context, f domain.Frame) (string, error)

func (fn classifierFunc) Classify(ctx context.Context, f domain.Frame) (string, error) {
	return fn(ctx, f)
}

type detectorFunc func(ctx context.Context, f domain.Frame) ([]string, error)

func (fn detectorFunc) Detect(ctx context.Context, f domain.Frame) ([]string, error) {
	return fn(ctx, f)
}

func always(label string) classifierFunc {
	return func(context.Context, domain.Frame) (string, error) { return label, nil }
}

func noObjects() detectorFunc {
	return func(context.Context, domain.Frame) ([]string, error) { return nil, nil }
}

type memStore struct {
	mu      sync.Mutex
	records map[string]*domain.SessionRecord
	putErr  error
	ctxErrs []error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*domain.SessionRecord)}
}

func (s *memStore) Put(ctx context.Context, r *domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.putErr != nil {
		return s.putErr
	}
	s.records[r.SessionID] = r
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id], nil
}

func (s *memStore) ListAll(ctx context.Context) ([]*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.SessionRecord
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

type countingObserver struct {
	mu      sync.Mutex
	read    int
	sampled int
	dropped int
	skipped map[string]int
	labels  map[domain.Label]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{skipped: map[string]int{}, labels: map[domain.Label]int{}}
}

func (o *countingObserver) FrameRead() {
	o.mu.Lock()
	o.read++
	o.mu.Unlock()
}

func (o *countingObserver) FrameSampled() {
	o.mu.Lock()
	o.sampled++
	o.mu.Unlock()
}

func (o *countingObserver) FrameDropped() {
	o.mu.Lock()
	o.dropped++
	o.mu.Unlock()
}

func (o *countingObserver) QueueDepth(int) {}

func (o *countingObserver) ClassificationSkipped(stage string) {
	o.mu.Lock()
	o.skipped[stage]++
	o.mu.Unlock()
}

func (o *countingObserver) LabelRecorded(l domain.Label) {
	o.mu.Lock()
	o.labels[l]++
	o.mu.Unlock()
}

type archivedFrame struct {
	sessionID string
	label     domain.Label
	seq       uint64
}

type memArchive struct {
	mu     sync.Mutex
	frames []archivedFrame
	err    error
}

func (a *memArchive) Archive(ctx context.Context, sessionID string, label domain.Label, frame domain.Frame) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.frames = append(a.frames, archivedFrame{sessionID: sessionID, label: label, seq: frame.Seq})
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Duration:       time.Minute,
		SampleInterval: 250 * time.Millisecond,
		QueueSize:      16,
		DropPolicy:     DropNewest,
	}
}

func newTestMonitor(t *testing.T, cfg Config, src *fakeSource, cls classifierFunc, det detectorFunc, store *memStore, opts ...Option) *Monitor {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	m, err := New(cfg, src, cls, det, store, opts...)
	require.NoError(t, err)
	return m
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero duration", Config{QueueSize: 1}},
		{"negative interval", Config{Duration: time.Minute, SampleInterval: -1, QueueSize: 1}},
		{"zero queue", Config{Duration: time.Minute}},
		{"unknown policy", Config{Duration: time.Minute, QueueSize: 1, DropPolicy: "drop-random"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, &fakeSource{}, always("happy"), noObjects(), newMemStore())
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestParseDropPolicy(t *testing.T) {
	p, err := ParseDropPolicy("Drop-Oldest")
	require.NoError(t, err)
	assert.Equal(t, DropOldest, p)

	p, err = ParseDropPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DropNewest, p)

	_, err = ParseDropPolicy("fifo")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRun_SourceExhausted(t *testing.T) {
	store := newMemStore()
	obs := newCountingObserver()
	src := &fakeSource{count: 10, step: 100 * time.Millisecond}
	m := newTestMonitor(t, testConfig(), src, always("happy"), noObjects(), store, WithObserver(obs))

	rec, err := m.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)

	// Frames at 0..900ms with a 250ms interval sample 0, 300, 600, 900.
	assert.Equal(t, int64(10), rec.TotalFrames)
	assert.Equal(t, int64(4), rec.EmotionCounts[domain.LabelLaughing])
	assert.Equal(t, int64(4), rec.TotalFacesAnalyzed)
	assert.Equal(t, rec.EmotionCounts.Sum(), rec.TotalEmotionSamples)
	assert.Equal(t, domain.EndReasonSourceExhausted, rec.EndReason)
	assert.Equal(t, 1.0, rec.DurationMinutes)

	assert.Equal(t, rec, store.records[rec.SessionID])
	assert.Equal(t, 10, obs.read)
	assert.Equal(t, 4, obs.sampled)
	assert.Equal(t, 4, obs.labels[domain.LabelLaughing])
}

func TestRun_EmotionAndPhoneInSameFrame(t *testing.T) {
	store := newMemStore()
	src := &fakeSource{count: 1}
	det := detectorFunc(func(context.Context, domain.Frame) ([]string, error) {
		return []string{"person", "cell phone", "cell phone"}, nil
	})
	m := newTestMonitor(t, testConfig(), src, always("sad"), det, store)

	rec, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.EmotionCounts[domain.LabelSad])
	assert.Equal(t, int64(1), rec.EmotionCounts[domain.LabelUsingPhone])
	assert.Equal(t, int64(2), rec.TotalFacesAnalyzed)
}

func TestRun_ClassifierFailureSkipsOnlyThatBranch(t *testing.T) {
	store := newMemStore()
	obs := newCountingObserver()
	src := &fakeSource{count: 10, step: 100 * time.Millisecond}
	cls := classifierFunc(func(context.Context, domain.Frame) (string, error) {
		return "", errors.New("no face model")
	})
	det := detectorFunc(func(context.Context, domain.Frame) ([]string, error) {
		return []string{"cell phone"}, nil
	})
	m := newTestMonitor(t, testConfig(), src, cls, det, store, WithObserver(obs))

	rec, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), rec.EmotionCounts[domain.LabelUsingPhone])
	assert.Equal(t, int64(4), rec.TotalFacesAnalyzed)
	for _, l := range []domain.Label{domain.LabelFocused, domain.LabelLaughing, domain.LabelBored, domain.LabelSad} {
		assert.Zero(t, rec.EmotionCounts[l], l)
	}
	assert.Equal(t, 4, obs.skipped["emotion"])
	assert.Zero(t, obs.skipped["detection"])
}

func TestRun_UnknownEmotionRecordsNothing(t *testing.T) {
	store := newMemStore()
	m := newTestMonitor(t, testConfig(), &fakeSource{count: 3, step: time.Second}, always("xyz"), noObjects(), store)

	rec, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.TotalFrames)
	assert.Zero(t, rec.TotalFacesAnalyzed)
	assert.Zero(t, rec.TotalEmotionSamples)
}

func TestRun_SourceFailureStillSaves(t *testing.T) {
	store := newMemStore()
	src := &fakeSource{count: 3, step: time.Second, err: errors.New("camera unplugged")}
	m := newTestMonitor(t, testConfig(), src, always("neutral"), noObjects(), store)

	rec, err := m.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFrameSourceUnavailable)
	require.NotNil(t, rec)

	assert.Equal(t, domain.EndReasonSourceFailed, rec.EndReason)
	assert.Equal(t, int64(3), rec.TotalFrames)
	assert.Contains(t, store.records, rec.SessionID)
}

func TestRun_DurationElapsed(t *testing.T) {
	store := newMemStore()
	cfg := testConfig()
	cfg.Duration = 30 * time.Millisecond
	src := &fakeSource{count: 2, step: time.Second, block: true}
	m := newTestMonitor(t, cfg, src, always("neutral"), noObjects(), store)

	rec, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.EndReasonCompleted, rec.EndReason)
	assert.Equal(t, int64(2), rec.TotalFrames)
	assert.Contains(t, store.records, rec.SessionID)
}

func TestRun_StopSignalSavesWithLiveContext(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{count: 1, block: true, onExhausted: cancel}
	m := newTestMonitor(t, testConfig(), src, always("happy"), noObjects(), store)

	rec, err := m.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EndReasonStopped, rec.EndReason)
	assert.Contains(t, store.records, rec.SessionID)
	require.Len(t, store.ctxErrs, 1)
	assert.NoError(t, store.ctxErrs[0])
}

func TestRun_StoreFailureSurfaces(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("disk full")
	m := newTestMonitor(t, testConfig(), &fakeSource{count: 1}, always("happy"), noObjects(), store)

	rec, err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotNil(t, rec)
	assert.Len(t, store.ctxErrs, 1, "store write must not be retried")
}

func TestEnqueue_DropPolicies(t *testing.T) {
	frame := func(seq uint64) domain.Frame { return domain.Frame{Seq: seq} }

	tests := []struct {
		policy DropPolicy
		want   []uint64
	}{
		{DropNewest, []uint64{1, 2}},
		{DropOldest, []uint64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			cfg := testConfig()
			cfg.QueueSize = 2
			cfg.DropPolicy = tt.policy
			obs := newCountingObserver()
			m := newTestMonitor(t, cfg, &fakeSource{}, always("happy"), noObjects(), newMemStore(), WithObserver(obs))

			queue := make(chan domain.Frame, cfg.QueueSize)
			m.enqueue(queue, frame(1))
			m.enqueue(queue, frame(2))
			m.enqueue(queue, frame(3))
			close(queue)

			var got []uint64
			for f := range queue {
				got = append(got, f.Seq)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, obs.dropped)
		})
	}
}

func TestReplaceOldest(t *testing.T) {
	t.Run("full queue evicts head", func(t *testing.T) {
		cfg := testConfig()
		cfg.QueueSize = 1
		cfg.DropPolicy = DropOldest
		obs := newCountingObserver()
		m := newTestMonitor(t, cfg, &fakeSource{}, always("happy"), noObjects(), newMemStore(), WithObserver(obs))

		queue := make(chan domain.Frame, 1)
		queue <- domain.Frame{Seq: 1}
		m.replaceOldest(queue, domain.Frame{Seq: 2})

		assert.Equal(t, uint64(2), (<-queue).Seq)
		assert.Equal(t, 1, obs.dropped)
	})

	t.Run("worker drained queue first", func(t *testing.T) {
		cfg := testConfig()
		cfg.QueueSize = 1
		cfg.DropPolicy = DropOldest
		obs := newCountingObserver()
		m := newTestMonitor(t, cfg, &fakeSource{}, always("happy"), noObjects(), newMemStore(), WithObserver(obs))

		queue := make(chan domain.Frame, 1)
		m.replaceOldest(queue, domain.Frame{Seq: 2})

		assert.Equal(t, uint64(2), (<-queue).Seq)
		assert.Zero(t, obs.dropped)
	})
}

func TestRun_ArchivesFramePerLabel(t *testing.T) {
	store := newMemStore()
	archive := &memArchive{}
	src := &fakeSource{count: 2, step: time.Second, data: []byte{0xff, 0xd8, 0xff}}
	det := detectorFunc(func(context.Context, domain.Frame) ([]string, error) {
		return []string{"cell phone"}, nil
	})
	m := newTestMonitor(t, testConfig(), src, always("angry"), det, store, WithFrameArchive(archive))

	rec, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []archivedFrame{
		{rec.SessionID, domain.LabelBored, 0},
		{rec.SessionID, domain.LabelUsingPhone, 0},
		{rec.SessionID, domain.LabelBored, 1},
		{rec.SessionID, domain.LabelUsingPhone, 1},
	}, archive.frames)
}

func TestRun_ArchiveSkipsFramesWithoutData(t *testing.T) {
	archive := &memArchive{}
	m := newTestMonitor(t, testConfig(), &fakeSource{count: 3, step: time.Second}, always("happy"), noObjects(), newMemStore(), WithFrameArchive(archive))

	rec, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.EmotionCounts[domain.LabelLaughing])
	assert.Empty(t, archive.frames)
}

func TestRun_ArchiveFailureKeepsCounts(t *testing.T) {
	archive := &memArchive{err: errors.New("read-only file system")}
	src := &fakeSource{count: 2, step: time.Second, data: []byte("img")}
	m := newTestMonitor(t, testConfig(), src, always("neutral"), noObjects(), newMemStore(), WithFrameArchive(archive))

	rec, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.EmotionCounts[domain.LabelFocused])
}

func TestRun_SlowClassifierDoesNotStallCapture(t *testing.T) {
	store := newMemStore()
	obs := newCountingObserver()
	release := make(chan struct{})

	cfg := testConfig()
	cfg.SampleInterval = 0
	cfg.QueueSize = 1

	var once sync.Once
	cls := classifierFunc(func(ctx context.Context, f domain.Frame) (string, error) {
		once.Do(func() { <-release })
		return "neutral", nil
	})
	src := &fakeSource{count: 50, step: time.Millisecond, onExhausted: func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}}
	m := newTestMonitor(t, cfg, src, cls, noObjects(), store, WithObserver(obs))

	rec, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(50), rec.TotalFrames)
	assert.Equal(t, 50, obs.sampled)
	assert.Positive(t, obs.dropped)
	assert.Equal(t, int64(obs.sampled-obs.dropped), rec.EmotionCounts[domain.LabelFocused])
}

func TestLiveHandler(t *testing.T) {
	store := newMemStore()
	m := newTestMonitor(t, testConfig(), &fakeSource{count: 1}, always("happy"), noObjects(), store)
	handler := LiveHandler(m, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view LiveView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, int64(1), view.Counts[domain.LabelLaughing])
	assert.True(t, view.Closed)
	assert.Equal(t, 1.0, view.Metrics.Stats.EngagementRatio)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
