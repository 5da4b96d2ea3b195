// Package openai picks among ambiguous catalog results with any
// OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/adapters/llm"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = openai.GPT4oMini

// Disambiguator implements ports.Disambiguator over the chat completion API.
type Disambiguator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ ports.Disambiguator = (*Disambiguator)(nil)

// Config holds the chat provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewDisambiguator creates an OpenAI-compatible disambiguator.
func NewDisambiguator(cfg *Config) *Disambiguator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Disambiguator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Choose returns the position the model picked, or 0 when it has no opinion.
func (d *Disambiguator) Choose(ctx context.Context, in ports.DisambiguationInput) (int, error) {
	if len(in.Candidates) == 0 {
		return 0, nil
	}

	req := openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llm.SelectionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: llm.SelectionPrompt(in)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return 0, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return 0, errors.New("openai: empty completion response")
	}

	pos, err := llm.DecodePosition(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, fmt.Errorf("openai: %w", err)
	}

	d.logger.Debug("openai chose position",
		zap.String("model", d.model),
		zap.String("query", in.Query),
		zap.Int("position", pos),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pos, nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai: API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("openai: API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("openai: API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return fmt.Errorf("openai: request failed: %w", err)
}

// extractDetail reads the "detail" field some compatible providers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
