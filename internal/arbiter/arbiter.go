// Package arbiter scores the structural quality of text chunks. An arbiter
// asks an LLM to grade a chunk from 1 (badly broken) to 10 (perfectly
// structured) and to justify the grade; downstream the score decides whether
// the chunk is sent for repair. Callers must treat any classification error
// as a repair signal rather than trusting unverified text.
package arbiter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Classification is the arbiter's verdict on one chunk.
type Classification struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Arbiter judges whether a chunk of text has correct paragraph and sentence
// structure.
type Arbiter interface {
	Classify(ctx context.Context, chunkText string) (*Classification, error)
}

// MalformedResponseError reports a model reply that could not be parsed into
// a classification.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed classification response: %s", e.Detail)
}

// TransportError reports that no classification reply could be obtained at
// all: the endpoint was unreachable, answered with a bad status, or returned
// an unreadable envelope.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("classification request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// parseClassification decodes the model's JSON verdict. The score must be a
// JSON integer; fractional or quoted scores are rejected so a confused model
// cannot sneak a low-confidence grade past the threshold comparison.
func parseClassification(response string) (*Classification, error) {
	response = stripCodeFence(strings.TrimSpace(response))

	var parsed struct {
		Score  json.Number `json:"score"`
		Reason string      `json:"reason"`
	}

	dec := json.NewDecoder(strings.NewReader(response))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil, &MalformedResponseError{Detail: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if parsed.Score == "" {
		return nil, &MalformedResponseError{Detail: "missing score field"}
	}
	score, err := parsed.Score.Int64()
	if err != nil {
		return nil, &MalformedResponseError{Detail: fmt.Sprintf("score %q is not an integer", parsed.Score.String())}
	}

	return &Classification{Score: int(score), Reason: parsed.Reason}, nil
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
