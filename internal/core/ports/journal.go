package ports

import (
	"context"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// ResolutionJournal records finished resolutions.
type ResolutionJournal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}

// JournalReader reads recorded resolutions back.
type JournalReader interface {
	// Recent lists up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
	// Get returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (domain.JournalEntry, error)
}
