package parsing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

// Chain tries each parser in turn and returns the first success.
// It is how the LLM parser is placed in front of the rule parser.
type Chain struct {
	parsers []ports.RequestParser
	logger  *zap.Logger
}

var _ ports.RequestParser = (*Chain)(nil)

// NewChain builds a Chain. A nil logger disables logging.
func NewChain(logger *zap.Logger, parsers ...ports.RequestParser) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{parsers: parsers, logger: logger}
}

// Parse implements ports.RequestParser.
func (c *Chain) Parse(ctx context.Context, raw string) (domain.MusicRequest, error) {
	if len(c.parsers) == 0 {
		return domain.MusicRequest{}, errors.New("parsing: no parsers configured")
	}

	var lastErr error
	for i, p := range c.parsers {
		req, err := p.Parse(ctx, raw)
		if err == nil {
			return req, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.MusicRequest{}, fmt.Errorf("parsing: %w", ctxErr)
		}
		c.logger.Warn("request parser failed, trying next",
			zap.Int("parser", i),
			zap.Error(err),
		)
		lastErr = err
	}
	return domain.MusicRequest{}, fmt.Errorf("parsing: all parsers failed: %w", lastErr)
}
