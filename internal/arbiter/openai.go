package arbiter

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIArbiter classifies chunks through an OpenAI-compatible chat API.
type OpenAIArbiter struct {
	client *openai.Client
	model  string
}

// NewOpenAIArbiter creates an arbiter backed by an OpenAI-compatible
// endpoint. Pass an empty baseURL to use the default API host.
func NewOpenAIArbiter(apiKey, model, baseURL string) *OpenAIArbiter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIArbiter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Classify sends the chunk to the chat API and parses its JSON verdict.
func (a *OpenAIArbiter) Classify(ctx context.Context, chunkText string) (*Classification, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildClassifyPrompt(chunkText)},
		},
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &TransportError{Err: errors.New("response contained no choices")}
	}
	return parseClassification(resp.Choices[0].Message.Content)
}
