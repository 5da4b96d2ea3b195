package ollama

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/adapters/llm"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

// Disambiguator asks the model which numbered result best fits the request.
type Disambiguator struct {
	client *Client
}

var _ ports.Disambiguator = (*Disambiguator)(nil)

// NewDisambiguator returns a Disambiguator backed by client.
func NewDisambiguator(client *Client) *Disambiguator {
	return &Disambiguator{client: client}
}

// Choose implements ports.Disambiguator. Zero means the model had no opinion.
func (d *Disambiguator) Choose(ctx context.Context, in ports.DisambiguationInput) (int, error) {
	if len(in.Candidates) == 0 {
		return 0, nil
	}

	content, err := d.client.chat(ctx, llm.SelectionSystemPrompt, llm.SelectionPrompt(in))
	if err != nil {
		return 0, err
	}

	pos, err := llm.DecodePosition(content)
	if err != nil {
		return 0, fmt.Errorf("ollama: %w", err)
	}
	d.client.logger.Debug("ollama chose position", zap.String("query", in.Query), zap.Int("position", pos))
	return pos, nil
}
