package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := NewRecordStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestRecord(t *testing.T, focused int) *domain.SessionRecord {
	t.Helper()
	s, err := domain.OpenSession(5, time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	for i := 0; i < focused; i++ {
		require.NoError(t, s.RecordFrameObserved())
		require.NoError(t, s.RecordEmotion(domain.LabelFocused))
	}
	require.NoError(t, s.RecordPhoneUsage())
	rec, err := s.Close(5, domain.EndReasonCompleted, time.Date(2025, 4, 2, 8, 35, 0, 0, time.UTC))
	require.NoError(t, err)
	return rec
}

func TestRecordStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newTestRecord(t, 3)

	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, rec.SessionID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = os.Stat(filepath.Join(store.baseDir, "session_"+rec.SessionID+".json"))
	assert.NoError(t, err)
}

func TestRecordStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "20250101_000000_deadbeef")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(context.Background(), "../etc/passwd")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordStore_PutRecomputesSamples(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newTestRecord(t, 2)
	rec.TotalEmotionSamples = 100

	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, rec.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.TotalEmotionSamples)
}

func TestRecordStore_PutRejectsBadID(t *testing.T) {
	store := newTestStore(t)
	rec := newTestRecord(t, 1)
	rec.SessionID = "../escape"

	err := store.Put(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestRecordStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := "20250101_000000_corrupt1"

	path := filepath.Join(store.baseDir, "session_"+id+".json")
	require.NoError(t, os.WriteFile(path, []byte(`{"session_id": "`+id+`", "total_fr`), 0644))

	got, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
	assert.Nil(t, got)

	_, err = store.ListAll(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestRecordStore_ListAllSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a := newTestRecord(t, 1)
	b := newTestRecord(t, 2)
	require.NoError(t, store.Put(ctx, a))
	require.NoError(t, store.Put(ctx, b))

	require.NoError(t, os.WriteFile(filepath.Join(store.baseDir, "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.baseDir, ".session_x.tmp"), []byte("{"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(store.baseDir, "emotion_images"), 0755))

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecordStore_ConcurrentPutGetNeverTorn(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newTestRecord(t, 1)
	require.NoError(t, store.Put(ctx, rec))

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				next := *rec
				next.EmotionCounts = rec.EmotionCounts.Clone()
				next.EmotionCounts[domain.LabelFocused] = int64(n*100 + j)
				if err := store.Put(ctx, &next); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 40; j++ {
				got, err := store.Get(ctx, rec.SessionID)
				if err != nil {
					errs <- err
					return
				}
				if got == nil {
					errs <- fmt.Errorf("record vanished")
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Zero(t, lockCount(store))
}

func TestRecordStore_LocksReleasedAfterUse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := newTestRecord(t, 1)
	b := newTestRecord(t, 2)

	require.NoError(t, store.Put(ctx, a))
	require.NoError(t, store.Put(ctx, b))
	assert.Zero(t, lockCount(store), "after Put")

	_, err := store.Get(ctx, a.SessionID)
	require.NoError(t, err)
	_, err = store.Get(ctx, "20250101_000000_deadbeef")
	require.NoError(t, err)
	assert.Zero(t, lockCount(store), "after Get")

	_, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, lockCount(store), "after ListAll")
}

func TestRecordStore_SharedLockWhileHeld(t *testing.T) {
	store := newTestStore(t)

	first := store.acquire("s1")
	second := store.acquire("s1")
	assert.Same(t, first, second)
	assert.Equal(t, 1, lockCount(store))

	store.release("s1", first)
	assert.Equal(t, 1, lockCount(store))
	store.release("s1", second)
	assert.Zero(t, lockCount(store))
}

func lockCount(s *RecordStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
