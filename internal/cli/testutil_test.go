package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/infrastructure/config"
)

// isolate points every config source at temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "sessions")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("MCLASS_STORE", config.StoreFile)
	t.Setenv("MCLASS_DATA_DIR", dataDir)
	t.Setenv("MCLASS_LOG_LEVEL", "error")
	configPath = ""
	return dataDir
}

// testApp builds an AppContext over a temp file store.
func testApp(t *testing.T) *AppContext {
	t.Helper()
	isolate(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	app, err := newAppContextFromConfig(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newAppContextFromConfig: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func seed(t *testing.T, app *AppContext, id string, hour int, counts domain.Counts) {
	t.Helper()
	r := &domain.SessionRecord{
		SessionID:           id,
		DurationMinutes:     10,
		TotalFrames:         50,
		TotalFacesAnalyzed:  counts.Sum(),
		EmotionCounts:       counts,
		TotalEmotionSamples: counts.Sum(),
		SavedAt:             domain.NewTimestamp(time.Date(2025, 4, 1, hour, 0, 0, 0, time.UTC)),
	}
	if err := app.Store.Put(context.Background(), r); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}
