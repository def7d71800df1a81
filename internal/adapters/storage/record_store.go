package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/util"
)

const (
	filePrefix = "session_"
	fileSuffix = ".json"
)

// RecordStore keeps one JSON file per session under a root directory.
// Writes land in a temp file that is renamed into place, so readers see
// either the previous record or the new one, never a partial file.
type RecordStore struct {
	baseDir string

	mu    sync.Mutex
	locks map[string]*recordLock
}

// recordLock serialises access to one session file. refs counts the
// callers holding or waiting on it; the entry leaves the map at zero.
type recordLock struct {
	sync.RWMutex
	refs int
}

// NewRecordStore opens (and creates if needed) a store rooted at dir.
func NewRecordStore(dir string) (*RecordStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty record directory", domain.ErrInvalidConfiguration)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &RecordStore{baseDir: dir, locks: make(map[string]*recordLock)}, nil
}

// NewDefaultRecordStore roots the store in the XDG data directory.
func NewDefaultRecordStore() (*RecordStore, error) {
	baseDir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	return NewRecordStore(filepath.Join(baseDir, "sessions"))
}

func (s *RecordStore) Put(ctx context.Context, record *domain.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := domain.EncodeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	lock := s.acquire(record.SessionID)
	defer s.release(record.SessionID, lock)
	lock.Lock()
	defer lock.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.getPath(record.SessionID)); err != nil {
		return fmt.Errorf("failed to move record into place: %w", err)
	}

	return s.syncDir()
}

func (s *RecordStore) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !domain.ValidSessionID(id) {
		return nil, nil
	}

	lock := s.acquire(id)
	defer s.release(id, lock)
	lock.RLock()
	defer lock.RUnlock()

	return s.read(s.getPath(id))
}

func (s *RecordStore) ListAll(ctx context.Context) ([]*domain.SessionRecord, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var records []*domain.SessionRecord
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := idFromFileName(e.Name())
		if e.IsDir() || !ok {
			continue
		}

		lock := s.acquire(id)
		lock.RLock()
		rec, err := s.read(filepath.Join(s.baseDir, e.Name()))
		lock.RUnlock()
		s.release(id, lock)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *RecordStore) read(path string) (*domain.SessionRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	rec, err := domain.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// acquire returns the lock for id and takes a reference on it. Each call
// must be paired with release.
func (s *RecordStore) acquire(id string) *recordLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &recordLock{}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *RecordStore) release(id string, l *recordLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

func (s *RecordStore) syncDir() error {
	dir, err := os.Open(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to open sessions directory: %w", err)
	}
	defer func() { _ = dir.Close() }()
	if err := dir.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return fmt.Errorf("failed to sync sessions directory: %w", err)
	}
	return nil
}

func (s *RecordStore) getPath(id string) string {
	return filepath.Join(s.baseDir, filePrefix+id+fileSuffix)
}

func idFromFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	return id, domain.ValidSessionID(id)
}
