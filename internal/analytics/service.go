package analytics

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/ports"
)

// Service answers read-time questions about stored sessions. It holds no
// state of its own; every result is recomputed from the store.
type Service struct {
	store  ports.SessionRecordStore
	logger Logger
}

// NewService creates a new analytics service
func NewService(store ports.SessionRecordStore, logger Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ListSessions returns every stored record in store order.
func (s *Service) ListSessions(ctx context.Context) ([]*domain.SessionRecord, error) {
	s.logger.Debug("listing sessions")
	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list sessions", "error", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return records, nil
}

// RecentSessions returns summaries ordered newest first.
func (s *Service) RecentSessions(ctx context.Context) ([]SessionSummary, error) {
	records, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(records)

	out := make([]SessionSummary, 0, len(records))
	for _, r := range records {
		out = append(out, Summarize(r))
	}
	return out, nil
}

// GetSession returns nil, nil when id is unknown.
func (s *Service) GetSession(ctx context.Context, id string) (*domain.SessionRecord, error) {
	s.logger.Debug("getting session", "session_id", id)
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("failed to get session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return rec, nil
}

// SessionDetail returns a record with its metrics, or nil, nil when id is unknown.
func (s *Service) SessionDetail(ctx context.Context, id string) (*SessionDetail, error) {
	rec, err := s.GetSession(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return &SessionDetail{Record: rec, Metrics: s.ComputeMetrics(rec)}, nil
}

func (s *Service) ComputeMetrics(r *domain.SessionRecord) domain.SessionMetrics {
	return domain.ComputeMetrics(r)
}

func (s *Service) ComputeAggregate(records []*domain.SessionRecord) domain.Aggregate {
	return domain.ComputeAggregate(records)
}

// CompareSessions resolves both ids and aligns their counts. An unknown id
// fails with domain.ErrMissingSession.
func (s *Service) CompareSessions(ctx context.Context, idA, idB string) (domain.Comparison, error) {
	a, err := s.GetSession(ctx, idA)
	if err != nil {
		return domain.Comparison{}, err
	}
	if a == nil {
		return domain.Comparison{}, fmt.Errorf("%w: %s", domain.ErrMissingSession, idA)
	}
	b, err := s.GetSession(ctx, idB)
	if err != nil {
		return domain.Comparison{}, err
	}
	if b == nil {
		return domain.Comparison{}, fmt.Errorf("%w: %s", domain.ErrMissingSession, idB)
	}
	return domain.Compare(a, b)
}

// ClassReport lists every session newest first with the class aggregate.
func (s *Service) ClassReport(ctx context.Context) (ClassReport, error) {
	records, err := s.ListSessions(ctx)
	if err != nil {
		return ClassReport{}, err
	}
	domain.SortNewestFirst(records)

	report := ClassReport{
		Sessions:  make([]SessionSummary, 0, len(records)),
		Aggregate: domain.ComputeAggregate(records),
	}
	for _, r := range records {
		report.Sessions = append(report.Sessions, Summarize(r))
	}
	return report, nil
}
