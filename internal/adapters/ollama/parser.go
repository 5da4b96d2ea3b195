package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/adapters/llm"
	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// RequestParser asks the model to split a request into title, artist and
// version preferences.
type RequestParser struct {
	client *Client
}

// NewRequestParser returns a RequestParser backed by client.
func NewRequestParser(client *Client) *RequestParser {
	return &RequestParser{client: client}
}

// Parse implements ports.RequestParser. Blank input returns domain.ErrEmptyRequest without a model call.
func (p *RequestParser) Parse(ctx context.Context, raw string) (domain.MusicRequest, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.MusicRequest{}, domain.ErrEmptyRequest
	}

	content, err := p.client.chat(ctx, llm.ParseSystemPrompt, raw)
	if err != nil {
		return domain.MusicRequest{}, err
	}

	req, err := llm.DecodeRequest(raw, content)
	if err != nil {
		return domain.MusicRequest{}, fmt.Errorf("ollama: %w", err)
	}
	return req, nil
}
