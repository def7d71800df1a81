package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/util"
)

// SessionRecordRepository stores session records in a libsql table.
// Counts are kept as a JSON object so records with non-canonical keys
// survive unchanged.
type SessionRecordRepository struct {
	db *sql.DB
}

func NewSessionRecordRepository(db *sql.DB) *SessionRecordRepository {
	return &SessionRecordRepository{db: db}
}

const upsertRecord = `
INSERT INTO session_records (
    session_id, duration_minutes, total_frames, total_faces_analyzed,
    emotion_counts, total_emotion_samples, saved_at, started_at, elapsed_minutes, end_reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    duration_minutes = excluded.duration_minutes,
    total_frames = excluded.total_frames,
    total_faces_analyzed = excluded.total_faces_analyzed,
    emotion_counts = excluded.emotion_counts,
    total_emotion_samples = excluded.total_emotion_samples,
    saved_at = excluded.saved_at,
    started_at = excluded.started_at,
    elapsed_minutes = excluded.elapsed_minutes,
    end_reason = excluded.end_reason`

const selectRecord = `
SELECT session_id, duration_minutes, total_frames, total_faces_analyzed,
       emotion_counts, total_emotion_samples, saved_at, started_at, elapsed_minutes, end_reason
FROM session_records`

func (r *SessionRecordRepository) Put(ctx context.Context, record *domain.SessionRecord) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", domain.ErrCorruptRecord)
	}
	rec := *record
	rec.EmotionCounts = record.EmotionCounts.Clone()
	rec.TotalEmotionSamples = rec.EmotionCounts.Sum()
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	counts, err := json.Marshal(rec.EmotionCounts)
	if err != nil {
		return fmt.Errorf("failed to encode emotion counts: %w", err)
	}

	var startedAt string
	if rec.StartedAt != nil {
		startedAt = rec.StartedAt.RFC3339()
	}

	_, err = r.db.ExecContext(ctx, upsertRecord,
		rec.SessionID,
		rec.DurationMinutes,
		rec.TotalFrames,
		rec.TotalFacesAnalyzed,
		string(counts),
		rec.TotalEmotionSamples,
		rec.SavedAt.RFC3339(),
		util.NullString(startedAt),
		util.NullFloat64(rec.ElapsedMinutes),
		util.NullString(string(rec.EndReason)),
	)
	if err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}
	return nil
}

func (r *SessionRecordRepository) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, selectRecord+` WHERE session_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SessionRecordRepository) ListAll(ctx context.Context) ([]*domain.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.SessionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.SessionRecord, error) {
	var (
		rec       domain.SessionRecord
		counts    string
		savedAt   string
		startedAt sql.NullString
		elapsed   sql.NullFloat64
		endReason sql.NullString
	)
	err := s.Scan(
		&rec.SessionID,
		&rec.DurationMinutes,
		&rec.TotalFrames,
		&rec.TotalFacesAnalyzed,
		&counts,
		&rec.TotalEmotionSamples,
		&savedAt,
		&startedAt,
		&elapsed,
		&endReason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan session record: %w", err)
	}

	if err := json.Unmarshal([]byte(counts), &rec.EmotionCounts); err != nil {
		return nil, fmt.Errorf("%w: %s: emotion_counts: %w", domain.ErrCorruptRecord, rec.SessionID, err)
	}
	if rec.SavedAt, err = domain.ParseTimestamp(savedAt); err != nil {
		return nil, fmt.Errorf("%w: %s: saved_at: %w", domain.ErrCorruptRecord, rec.SessionID, err)
	}
	if startedAt.Valid {
		ts, err := domain.ParseTimestamp(startedAt.String)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: started_at: %w", domain.ErrCorruptRecord, rec.SessionID, err)
		}
		rec.StartedAt = &ts
	}
	rec.ElapsedMinutes = util.NullFloat64ToPtr(elapsed)
	rec.EndReason = domain.EndReason(endReason.String)

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", rec.SessionID, err)
	}
	return &rec, nil
}
