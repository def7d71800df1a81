package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

func TestSessionsList(t *testing.T) {
	app := testApp(t)
	seed(t, app, "early", 8, domain.Counts{domain.LabelFocused: 3})
	seed(t, app, "late", 16, domain.Counts{domain.LabelBored: 3})
	sessionsLast = 0

	out, err := execute(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	if strings.Index(out, "late") > strings.Index(out, "early") {
		t.Errorf("expected newest first:\n%s", out)
	}
	if !strings.Contains(out, "Showing 2 session(s)") {
		t.Errorf("missing footer:\n%s", out)
	}
}

func TestSessionsList_Last(t *testing.T) {
	app := testApp(t)
	seed(t, app, "early", 8, domain.Counts{domain.LabelFocused: 3})
	seed(t, app, "late", 16, domain.Counts{domain.LabelBored: 3})
	t.Cleanup(func() { sessionsLast = 0 })

	out, err := execute(t, "sessions", "list", "--last", "1")
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	if strings.Contains(out, "early") {
		t.Errorf("--last 1 should hide older sessions:\n%s", out)
	}
}

func TestSessionsShow(t *testing.T) {
	app := testApp(t)
	seed(t, app, "s1", 9, domain.Counts{domain.LabelFocused: 1, domain.LabelUsingPhone: 3})

	out, err := execute(t, "sessions", "show", "s1")
	if err != nil {
		t.Fatalf("sessions show: %v", err)
	}
	for _, want := range []string{"Session s1", domain.SuggestionLowEngagement, domain.SuggestionPhoneUsage} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "sessions", "show", "nope"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestCompare(t *testing.T) {
	app := testApp(t)
	seed(t, app, "a", 9, domain.Counts{domain.LabelFocused: 5})
	seed(t, app, "b", 10, domain.Counts{domain.LabelFocused: 2, domain.LabelSad: 1})

	out, err := execute(t, "compare", "a", "b")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out, "-3") || !strings.Contains(out, "+1") {
		t.Errorf("missing deltas:\n%s", out)
	}

	if _, err := execute(t, "compare", "a", "ghost"); !errors.Is(err, domain.ErrMissingSession) {
		t.Errorf("error = %v, want ErrMissingSession", err)
	}
}

func TestStats(t *testing.T) {
	app := testApp(t)
	seed(t, app, "a", 9, domain.Counts{domain.LabelFocused: 6, domain.LabelBored: 4})
	seed(t, app, "b", 10, domain.Counts{domain.LabelLaughing: 7, domain.LabelSad: 3})

	out, err := execute(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "65.00%") || !strings.Contains(out, "B") {
		t.Errorf("expected mean 65%% and grade B:\n%s", out)
	}
}

func TestStats_Empty(t *testing.T) {
	testApp(t)
	out, err := execute(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "No sessions found") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	t.Setenv("MCLASS_AUTH_TOKEN", "top-secret")

	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if strings.Contains(out, "top-secret") {
		t.Error("auth token leaked")
	}
	if !strings.Contains(out, "sample_interval: 800ms") {
		t.Errorf("output missing sample interval:\n%s", out)
	}
}

func TestConfigFlag(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "mclass.yaml")
	if err := os.WriteFile(path, []byte("queue_size: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { configPath = "" })

	out, err := execute(t, "--config", path, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "queue_size: 12") {
		t.Errorf("overlay not applied:\n%s", out)
	}
}

func TestMigrate_FileStore(t *testing.T) {
	isolate(t)
	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "has no schema") {
		t.Errorf("output = %q", out)
	}
}

func TestMigrate_LibSQL(t *testing.T) {
	isolate(t)
	t.Setenv("MCLASS_STORE", "libsql")
	t.Setenv("MCLASS_DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "m.db"))

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Migrated to version 1") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "migrate", "x"); err == nil {
		t.Error("expected error for invalid version")
	}
}

func TestRecordCommand(t *testing.T) {
	isolate(t)
	script := filepath.Join(t.TempDir(), "lesson.yaml")
	content := "frames:\n  - emotion: neutral\n  - emotion: happy\n    objects: [phone]\n"
	if err := os.WriteFile(script, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "record", "--script", script, "--minutes", "1", "--sample-interval", "0s")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(out, "saved") || !strings.Contains(out, string(domain.EndReasonSourceExhausted)) {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	if !strings.Contains(out, "Showing 1 session(s)") {
		t.Errorf("recorded session not listed:\n%s", out)
	}
}
