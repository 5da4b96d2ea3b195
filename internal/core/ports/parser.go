package ports

import (
	"context"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// RequestParser turns free text into a structured MusicRequest.
type RequestParser interface {
	Parse(ctx context.Context, raw string) (domain.MusicRequest, error)
}
