package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/util"
)

// FrameArchive writes frame images to <root>/<session_id>/<label>/<uuid>.jpg.
type FrameArchive struct {
	baseDir string
}

// NewFrameArchive opens (and creates if needed) an archive rooted at dir.
func NewFrameArchive(dir string) (*FrameArchive, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty frame archive directory", domain.ErrInvalidConfiguration)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame archive directory: %w", err)
	}
	return &FrameArchive{baseDir: dir}, nil
}

// NewDefaultFrameArchive roots the archive in the XDG data directory.
func NewDefaultFrameArchive() (*FrameArchive, error) {
	baseDir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	return NewFrameArchive(filepath.Join(baseDir, "frames"))
}

func (a *FrameArchive) Archive(ctx context.Context, sessionID string, label domain.Label, frame domain.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !domain.ValidSessionID(sessionID) {
		return fmt.Errorf("invalid session id %q", sessionID)
	}
	if !label.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidLabel, label)
	}

	dir := filepath.Join(a.baseDir, sessionID, string(label))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create label directory: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, frame.Data, 0644); err != nil {
		return fmt.Errorf("failed to write frame image: %w", err)
	}
	return nil
}
