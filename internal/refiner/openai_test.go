package refiner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIRefiner_Repair_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"The cat sat on the mat."}}]}`))
	}))
	defer server.Close()

	refiner := NewOpenAIRefiner("test-key", "gpt-test", server.URL+"/v1")

	result, err := refiner.Repair(context.Background(), "The cat sat on\nthe mat.", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "The cat sat on the mat." {
		t.Errorf("expected repaired text, got %q", result)
	}
}

func TestOpenAIRefiner_Repair_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	refiner := NewOpenAIRefiner("test-key", "gpt-test", server.URL+"/v1")

	_, err := refiner.Repair(context.Background(), "chunk", "")
	if err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestOpenAIRefiner_Polish_EmptyResponseReturnsInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	}))
	defer server.Close()

	refiner := NewOpenAIRefiner("test-key", "gpt-test", server.URL+"/v1")

	result, err := refiner.Polish(context.Background(), "A paragraph to polish.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "A paragraph to polish." {
		t.Errorf("expected original paragraph when response empty, got %q", result)
	}
}
