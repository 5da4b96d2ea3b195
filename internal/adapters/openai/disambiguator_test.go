package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

var harvestInput = ports.DisambiguationInput{
	Request: domain.MusicRequest{
		Title:       "harvest",
		Artist:      "neil young",
		Preferences: domain.Preferences{PreferLive: true},
	},
	Query: "harvest neil young live",
	Candidates: []domain.SearchCandidate{
		{Position: 1, Title: "Harvest", Artist: "Neil Young", Album: "Harvest"},
		{Position: 2, Title: "Harvest (Live)", Artist: "Neil Young", Album: "Live at Massey Hall"},
	},
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Model:  "test-model",
		Choices: []openai.ChatCompletionChoice{
			{Index: 0, Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openai.Usage{PromptTokens: 40, CompletionTokens: 5, TotalTokens: 45},
	}
}

func TestDisambiguator_Choose(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"position": 2}`))
	}))
	defer server.Close()

	d := NewDisambiguator(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	pos, err := d.Choose(context.Background(), harvestInput)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	assert.Equal(t, "test-model", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "PREFERENCES: live version")
}

func TestDisambiguator_Choose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "api error",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`,
			wantMsg: "invalid api key",
		},
		{
			name:    "detail error",
			status:  http.StatusBadRequest,
			body:    `{"detail":"model not available"}`,
			wantMsg: "model not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			d := NewDisambiguator(&Config{APIKey: "k", BaseURL: server.URL})
			_, err := d.Choose(context.Background(), harvestInput)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDisambiguator_Choose_BadContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("the live one"))
	}))
	defer server.Close()

	d := NewDisambiguator(&Config{APIKey: "k", BaseURL: server.URL})
	_, err := d.Choose(context.Background(), harvestInput)
	assert.Error(t, err)
}

func TestDisambiguator_Choose_NoCandidates(t *testing.T) {
	d := NewDisambiguator(&Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	pos, err := d.Choose(context.Background(), ports.DisambiguationInput{})
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestNewDisambiguator_DefaultModel(t *testing.T) {
	d := NewDisambiguator(&Config{APIKey: "k"})
	assert.Equal(t, DefaultModel, d.model)
}
