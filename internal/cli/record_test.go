package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mclass/internal/adapters/replay"
	"github.com/emiliopalmerini/mclass/internal/domain"
)

func TestRecordSession_SavesRecord(t *testing.T) {
	app := testApp(t)
	app.Config.SampleInterval = 0
	app.Config.QueueSize = 16

	script, err := replay.Parse([]byte(`
latency: 0s
frames:
  - emotion: neutral
  - emotion: happy
    objects: [cell phone]
  - emotion_error: model crashed
  - emotion: sad
`))
	require.NoError(t, err)

	record, err := recordSession(context.Background(), app, script, time.Minute, "")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, domain.EndReasonSourceExhausted, record.EndReason)
	assert.EqualValues(t, 4, record.TotalFrames)
	assert.Equal(t, record.EmotionCounts.Sum(), record.TotalEmotionSamples)
	assert.Equal(t, record.TotalFacesAnalyzed, record.TotalEmotionSamples)

	stored, err := app.Store.Get(context.Background(), record.SessionID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, record.EmotionCounts, stored.EmotionCounts)
}

func TestRecordSession_ArchivesLabelledFrames(t *testing.T) {
	app := testApp(t)
	app.Config.SampleInterval = 0
	app.Config.ArchiveFrames = true
	app.Config.FramesDir = t.TempDir()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f0.jpg"), []byte("frame-0"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f1.jpg"), []byte("frame-1"), 0644))
	path := filepath.Join(dir, "lesson.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
frames:
  - emotion: neutral
    image: f0.jpg
  - emotion: happy
    objects: [cell phone]
    image: f1.jpg
  - emotion: sad
`), 0644))
	script, err := replay.Load(path)
	require.NoError(t, err)

	record, err := recordSession(context.Background(), app, script, time.Minute, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, record.EmotionCounts[domain.LabelSad])

	images := func(label domain.Label) []string {
		matches, err := filepath.Glob(filepath.Join(app.Config.FramesDir, record.SessionID, string(label), "*.jpg"))
		require.NoError(t, err)
		return matches
	}
	focused := images(domain.LabelFocused)
	require.Len(t, focused, 1)
	data, err := os.ReadFile(focused[0])
	require.NoError(t, err)
	assert.Equal(t, "frame-0", string(data))

	assert.Len(t, images(domain.LabelLaughing), 1)
	assert.Len(t, images(domain.LabelUsingPhone), 1)
	assert.Empty(t, images(domain.LabelSad), "frames without an image are not archived")
}

func TestRecordSession_SourceFailure(t *testing.T) {
	app := testApp(t)
	app.Config.SampleInterval = 0

	script, err := replay.Parse([]byte(`
frames:
  - emotion: neutral
  - source_error: camera unplugged
`))
	require.NoError(t, err)

	record, err := recordSession(context.Background(), app, script, time.Minute, "")
	require.ErrorIs(t, err, domain.ErrFrameSourceUnavailable)
	require.NotNil(t, record)
	assert.Equal(t, domain.EndReasonSourceFailed, record.EndReason)

	stored, err := app.Store.Get(context.Background(), record.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestRecordSession_LiveEndpoint(t *testing.T) {
	app := testApp(t)
	app.Config.SampleInterval = 0

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	script, err := replay.Parse([]byte(`
frame_interval: 20ms
loop: true
frames:
  - emotion: neutral
`))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan *domain.SessionRecord, 1)
	go func() {
		record, _ := recordSession(ctx, app, script, time.Minute, addr)
		done <- record
	}()

	var live map[string]any
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/live", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&live) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, live, "session_id")

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case record := <-done:
		require.NotNil(t, record)
		assert.Equal(t, domain.EndReasonStopped, record.EndReason)
	case <-time.After(5 * time.Second):
		t.Fatal("record session did not stop")
	}
}
