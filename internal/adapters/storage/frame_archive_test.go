package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

func TestFrameArchive_WritesUnderSessionAndLabel(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	archive, err := NewFrameArchive(root)
	require.NoError(t, err)

	id := "20250402_083000_abcd1234"
	frame := domain.Frame{Seq: 7, Data: []byte("jpeg bytes")}
	require.NoError(t, archive.Archive(ctx, id, domain.LabelBored, frame))
	require.NoError(t, archive.Archive(ctx, id, domain.LabelBored, frame))

	entries, err := os.ReadDir(filepath.Join(root, id, "bored"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].Name(), entries[1].Name())
	for _, e := range entries {
		assert.True(t, strings.HasSuffix(e.Name(), ".jpg"), e.Name())
		data, err := os.ReadFile(filepath.Join(root, id, "bored", e.Name()))
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(data))
	}
}

func TestFrameArchive_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	archive, err := NewFrameArchive(t.TempDir())
	require.NoError(t, err)
	frame := domain.Frame{Data: []byte("x")}

	assert.Error(t, archive.Archive(ctx, "../escape", domain.LabelSad, frame))
	assert.ErrorIs(t, archive.Archive(ctx, "20250402_083000_abcd1234", domain.Label("happy"), frame), domain.ErrInvalidLabel)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, archive.Archive(cancelled, "20250402_083000_abcd1234", domain.LabelSad, frame), context.Canceled)

	_, err = NewFrameArchive("")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
