package pruner

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIFinder detects prunable headings through an OpenAI-compatible chat
// API.
type OpenAIFinder struct {
	client *openai.Client
	model  string
}

// NewOpenAIFinder creates a Finder backed by an OpenAI-compatible endpoint.
// Pass an empty baseURL to use the default API host.
func NewOpenAIFinder(apiKey, model, baseURL string) *OpenAIFinder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIFinder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// FindHeadings sends the document sample to the chat API and parses its
// JSON heading proposal.
func (f *OpenAIFinder) FindHeadings(ctx context.Context, sample string) (*Headings, error) {
	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildHeadingsPrompt(sample)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("headings request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("headings response contained no choices")
	}
	return parseHeadings(resp.Choices[0].Message.Content)
}
