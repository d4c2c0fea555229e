package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/docpolish/docpolish/internal/postprocess"
)

// OllamaRefiner repairs and polishes text with a local Ollama model.
type OllamaRefiner struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaRefiner creates a refiner backed by a local Ollama model.
func NewOllamaRefiner(model, baseURL string) *OllamaRefiner {
	return &OllamaRefiner{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Repair sends the chunk to the model with a restoration prompt and returns
// the repaired text. An empty model reply returns the chunk unchanged.
func (r *OllamaRefiner) Repair(ctx context.Context, chunkText, reason string) (string, error) {
	raw, err := r.generate(ctx, buildRepairPrompt(chunkText, reason))
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
func (r *OllamaRefiner) Polish(ctx context.Context, paragraph string) (string, error) {
	raw, err := r.generate(ctx, buildPolishPrompt(paragraph))
	if err != nil {
		return "", err
	}

	polished := postprocess.Clean(raw)
	if polished == "" {
		return paragraph, nil
	}
	return polished, nil
}

func (r *OllamaRefiner) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:  r.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal refiner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", r.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create refiner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refiner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refiner returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode refiner response: %w", err)
	}

	return ollamaResp.Response, nil
}
