package refiner

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docpolish/docpolish/internal/postprocess"
)

// OpenAIRefiner repairs and polishes text through an OpenAI-compatible chat
// API.
type OpenAIRefiner struct {
	client *openai.Client
	model  string
}

// NewOpenAIRefiner creates a refiner backed by an OpenAI-compatible
// endpoint. Pass an empty baseURL to use the default API host.
func NewOpenAIRefiner(apiKey, model, baseURL string) *OpenAIRefiner {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIRefiner{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Repair sends the chunk with a restoration prompt and returns the repaired
// text. An empty model reply returns the chunk unchanged.
func (r *OpenAIRefiner) Repair(ctx context.Context, chunkText, reason string) (string, error) {
	raw, err := r.chat(ctx, buildRepairPrompt(chunkText, reason))
	if err != nil {
		return "", err
	}

	repaired := postprocess.Clean(raw)
	if repaired == "" {
		return chunkText, nil
	}
	return repaired, nil
}

// Polish sends a single paragraph for cleanup. The reply may be
// JunkSentinel. An empty model reply returns the paragraph unchanged.
func (r *OpenAIRefiner) Polish(ctx context.Context, paragraph string) (string, error) {
	raw, err := r.chat(ctx, buildPolishPrompt(paragraph))
	if err != nil {
		return "", err
	}

	polished := postprocess.Clean(raw)
	if polished == "" {
		return paragraph, nil
	}
	return polished, nil
}

func (r *OpenAIRefiner) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("refiner request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("refiner returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
