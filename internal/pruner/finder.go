package pruner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Headings is a Finder's proposal for where the document body starts and
// ends. An empty string means there is nothing to cut on that side.
type Headings struct {
	Start string `json:"start_heading"`
	End   string `json:"end_heading"`
}

// Finder proposes the heading pair that bounds the real content of a
// document, given a sample of its first and last paragraphs.
type Finder interface {
	FindHeadings(ctx context.Context, sample string) (*Headings, error)
}

// parseHeadings decodes the model's JSON heading proposal.
func parseHeadings(response string) (*Headings, error) {
	response = stripCodeFence(strings.TrimSpace(response))

	var parsed Headings
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return nil, fmt.Errorf("malformed headings response: %w", err)
	}
	parsed.Start = strings.TrimSpace(parsed.Start)
	parsed.End = strings.TrimSpace(parsed.End)
	return &parsed, nil
}

// stripCodeFence removes a Markdown code fence wrapping the whole response,
// which some models add despite JSON-only instructions.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
