package ports

import (
	"context"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// SessionRecordStore persists finished sessions keyed by session id.
type SessionRecordStore interface {
	// Put writes a record. Overwriting an existing id is allowed.
	Put(ctx context.Context, record *domain.SessionRecord) error
	// Get returns nil, nil when no record exists for id.
	Get(ctx context.Context, id string) (*domain.SessionRecord, error)
	// ListAll returns every record in no particular order.
	ListAll(ctx context.Context) ([]*domain.SessionRecord, error)
}
