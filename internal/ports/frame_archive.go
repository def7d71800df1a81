package ports

import (
	"context"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// FrameArchive keeps the image of a classified frame under each label it
// was counted as.
type FrameArchive interface {
	Archive(ctx context.Context, sessionID string, label domain.Label, frame domain.Frame) error
}
