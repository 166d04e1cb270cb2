package replies

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// System defines the public contract for reply operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, letterID uuid.UUID) ([]Reply, error)
	// Generate drafts a reply and moves the letter to response_generated.
	// Model failure stores the holding message with Fallback set.
	Generate(ctx context.Context, letterID uuid.UUID, cmd GenerateCommand) (*Reply, error)
	// Select marks replyID as the letter's final reply, deselecting every
	// other reply, and completes the letter.
	Select(ctx context.Context, letterID, replyID uuid.UUID) (*Reply, error)
	// Reset deselects all replies and returns the letter to analyzed.
	Reset(ctx context.Context, letterID uuid.UUID) error
	// Archive opens the archived text of a selected reply. The caller closes it.
	Archive(ctx context.Context, letterID, replyID uuid.UUID) (io.ReadCloser, error)
}
