package repo

import (
	"context"

	"github.com/hamed0406/slotwatch/internal/domain"
)

// SendLogStore persists the per-session notification history.
// Load returns an empty log, not an error, when nothing was saved yet.
// Save replaces the stored log with l.
type SendLogStore interface {
	Load(ctx context.Context) (domain.SendLog, error)
	Save(ctx context.Context, l domain.SendLog) error
}
