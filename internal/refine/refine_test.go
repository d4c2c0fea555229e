package refine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docpolish/docpolish/internal/arbiter"
	"github.com/docpolish/docpolish/internal/refiner"
	"github.com/docpolish/docpolish/internal/validator"
)

type stubArbiter struct {
	classify func(chunkText string) (*arbiter.Classification, error)
	calls    int
}

func (s *stubArbiter) Classify(_ context.Context, chunkText string) (*arbiter.Classification, error) {
	s.calls++
	return s.classify(chunkText)
}

type stubRefiner struct {
	repair func(chunkText, reason string) (string, error)
	calls  int
}

func (s *stubRefiner) Repair(_ context.Context, chunkText, reason string) (string, error) {
	s.calls++
	return s.repair(chunkText, reason)
}

type stubPolisher struct {
	polish func(paragraph string) (string, error)
}

func (s *stubPolisher) Polish(_ context.Context, paragraph string) (string, error) {
	return s.polish(paragraph)
}

func passingArbiter() *stubArbiter {
	return &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return &arbiter.Classification{Score: 9, Reason: "clean"}, nil
	}}
}

func forbiddenRefiner(t *testing.T) *stubRefiner {
	t.Helper()
	return &stubRefiner{repair: func(chunkText, _ string) (string, error) {
		t.Errorf("unexpected repair call for chunk %q", chunkText)
		return chunkText, nil
	}}
}

func TestRefine_CleanTextPassesThrough(t *testing.T) {
	input := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."

	arb := passingArbiter()
	eng := New(arb, forbiddenRefiner(t), nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != input {
		t.Errorf("clean text changed:\ngot  %q\nwant %q", res.Text, input)
	}
	if res.Paragraphs != 3 {
		t.Errorf("expected 3 paragraphs, got %d", res.Paragraphs)
	}
	if res.ChunksTotal != 1 {
		t.Errorf("expected 1 chunk, got %d", res.ChunksTotal)
	}
	if res.ChunksFlagged != 0 || res.ChunksRepaired != 0 {
		t.Errorf("expected no repairs, got flagged=%d repaired=%d", res.ChunksFlagged, res.ChunksRepaired)
	}
	if arb.calls != 1 {
		t.Errorf("expected 1 classify call, got %d", arb.calls)
	}
}

func TestRefine_ScoreAtThresholdIsKept(t *testing.T) {
	input := "This text sits right on the line."

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return &arbiter.Classification{Score: 7, Reason: "borderline"}, nil
	}}
	rep := forbiddenRefiner(t)
	eng := New(arb, rep, nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != input {
		t.Errorf("text at threshold changed: %q", res.Text)
	}
	if res.ChunksFlagged != 0 {
		t.Errorf("expected 0 flagged chunks, got %d", res.ChunksFlagged)
	}
	if rep.calls != 0 {
		t.Errorf("expected no repair calls, got %d", rep.calls)
	}
}

func TestRefine_ScoreBelowThresholdIsRepaired(t *testing.T) {
	input := "this text is broken and\nneeds real help."

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return &arbiter.Classification{Score: 6, Reason: "fragmented lines"}, nil
	}}
	rep := &stubRefiner{repair: func(_, reason string) (string, error) {
		if reason != "fragmented lines" {
			t.Errorf("expected arbiter reason to reach the refiner, got %q", reason)
		}
		return "This text is broken and needs real help.", nil
	}}
	eng := New(arb, rep, nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "This text is broken and needs real help." {
		t.Errorf("unexpected repaired text: %q", res.Text)
	}
	if res.ChunksFlagged != 1 || res.ChunksRepaired != 1 {
		t.Errorf("expected 1 flagged and 1 repaired, got flagged=%d repaired=%d", res.ChunksFlagged, res.ChunksRepaired)
	}
	if rep.calls != 1 {
		t.Errorf("expected 1 repair call, got %d", rep.calls)
	}
}

func TestRefine_ClassifierErrorForcesRepair(t *testing.T) {
	input := "Text the arbiter never got to see."

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return nil, errors.New("model offline")
	}}
	rep := &stubRefiner{repair: func(_, reason string) (string, error) {
		if reason != "classification failed" {
			t.Errorf("expected synthetic reason after classifier error, got %q", reason)
		}
		return "Recovered text.", nil
	}}
	eng := New(arb, rep, nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Recovered text." {
		t.Errorf("expected chunk to be repaired despite classifier error, got %q", res.Text)
	}
	if res.ChunksFlagged != 1 {
		t.Errorf("expected chunk flagged on classifier error, got %d", res.ChunksFlagged)
	}
}

func TestRefine_MalformedVerdictKeepsParseDetail(t *testing.T) {
	input := "Text the arbiter mumbled about."

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return nil, &arbiter.MalformedResponseError{Detail: "missing score field"}
	}}
	rep := &stubRefiner{repair: func(_, reason string) (string, error) {
		if reason != "missing score field" {
			t.Errorf("expected parse detail as reason, got %q", reason)
		}
		return "Recovered text.", nil
	}}
	eng := New(arb, rep, nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Recovered text." {
		t.Errorf("expected chunk to be repaired, got %q", res.Text)
	}
}

func TestRefine_RepairErrorKeepsOriginal(t *testing.T) {
	input := "Broken text that scored badly."

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return &arbiter.Classification{Score: 2, Reason: "mangled"}, nil
	}}
	rep := &stubRefiner{repair: func(string, string) (string, error) {
		return "", errors.New("refiner offline")
	}}
	eng := New(arb, rep, nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != input {
		t.Errorf("failed repair must keep the original text:\ngot  %q\nwant %q", res.Text, input)
	}
	if res.RepairsFailed != 1 {
		t.Errorf("expected 1 failed repair, got %d", res.RepairsFailed)
	}
	if res.ChunksRepaired != 0 {
		t.Errorf("expected 0 repaired chunks, got %d", res.ChunksRepaired)
	}
}

func TestRefine_BlankRepairKeepsOriginal(t *testing.T) {
	input := "Chunk the refiner tried to erase."

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return &arbiter.Classification{Score: 1, Reason: "noise"}, nil
	}}
	rep := &stubRefiner{repair: func(string, string) (string, error) {
		return "   \n ", nil
	}}
	eng := New(arb, rep, nil, Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != input {
		t.Errorf("blank repair must keep the original text, got %q", res.Text)
	}
	if res.RepairsFailed != 1 {
		t.Errorf("expected 1 failed repair, got %d", res.RepairsFailed)
	}
}

func TestRefine_GuardRejectsCollapsedRepair(t *testing.T) {
	sentence := "This sentence pads the original chunk out to a believable length. "
	input := strings.TrimSpace(strings.Repeat(sentence, 5))

	arb := &stubArbiter{classify: func(string) (*arbiter.Classification, error) {
		return &arbiter.Classification{Score: 3, Reason: "duplicated"}, nil
	}}
	rep := &stubRefiner{repair: func(string, string) (string, error) {
		return "Ok.", nil
	}}
	eng := New(arb, rep, validator.New(), Options{ChunkSize: 5, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != input {
		t.Errorf("collapsed repair must be rejected:\ngot  %q\nwant %q", res.Text, input)
	}
	if res.RepairsFailed != 1 {
		t.Errorf("expected 1 rejected repair, got %d", res.RepairsFailed)
	}
}

func TestRefine_OverlapDeduplicated(t *testing.T) {
	paragraphs := []string{
		"Alpha paragraph.",
		"Bravo paragraph.",
		"Charlie paragraph.",
		"Delta paragraph.",
		"Echo paragraph.",
		"Foxtrot paragraph.",
	}
	input := strings.Join(paragraphs, "\n\n")

	// 6 paragraphs at size 4 overlap 1 gives windows [0:4] and [3:6], which
	// share the Delta paragraph.
	arb := passingArbiter()
	eng := New(arb, forbiddenRefiner(t), nil, Options{ChunkSize: 4, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChunksTotal != 2 {
		t.Fatalf("expected 2 chunks, got %d", res.ChunksTotal)
	}
	if res.Text != input {
		t.Errorf("overlap not deduplicated:\ngot  %q\nwant %q", res.Text, input)
	}
	if res.DuplicatesDropped != 1 {
		t.Errorf("expected 1 duplicate dropped, got %d", res.DuplicatesDropped)
	}
	if arb.calls != 2 {
		t.Errorf("expected 2 classify calls, got %d", arb.calls)
	}
}

func TestRefine_RewrittenOverlapKeepsBothVersions(t *testing.T) {
	paragraphs := []string{
		"Alpha paragraph.",
		"Bravo paragraph.",
		"Charlie paragraph.",
		"Delta paragraph.",
		"Echo paragraph.",
		"Foxtrot paragraph.",
	}
	input := strings.Join(paragraphs, "\n\n")

	// Only the second window is flagged, and its repair rewrites the shared
	// Delta paragraph. The two versions no longer match exactly, so both
	// survive reassembly.
	arb := &stubArbiter{classify: func(chunkText string) (*arbiter.Classification, error) {
		if strings.Contains(chunkText, "Foxtrot") {
			return &arbiter.Classification{Score: 2, Reason: "mangled"}, nil
		}
		return &arbiter.Classification{Score: 9}, nil
	}}
	rep := &stubRefiner{repair: func(chunkText, _ string) (string, error) {
		return strings.Replace(chunkText, "Delta paragraph.", "Delta paragraph, mended.", 1), nil
	}}
	eng := New(arb, rep, nil, Options{ChunkSize: 4, ChunkOverlap: 1})

	res, err := eng.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(res.Text, "Delta paragraph"); got != 2 {
		t.Errorf("expected both Delta versions kept, found %d in %q", got, res.Text)
	}
	if res.DuplicatesDropped != 0 {
		t.Errorf("expected 0 duplicates dropped, got %d", res.DuplicatesDropped)
	}
}

func TestRefine_EmptyInput(t *testing.T) {
	arb := &stubArbiter{classify: func(chunkText string) (*arbiter.Classification, error) {
		t.Errorf("unexpected classify call for %q", chunkText)
		return nil, errors.New("unreachable")
	}}
	eng := New(arb, forbiddenRefiner(t), nil, Options{})

	for _, input := range []string{"", "   \n\n \t "} {
		res, err := eng.Refine(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if res.Text != "" {
			t.Errorf("expected empty output for %q, got %q", input, res.Text)
		}
		if res.ChunksTotal != 0 {
			t.Errorf("expected 0 chunks for %q, got %d", input, res.ChunksTotal)
		}
	}
}

func TestRefine_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(passingArbiter(), &stubRefiner{}, nil, Options{ChunkSize: 5, ChunkOverlap: 1})
	_, err := eng.Refine(ctx, "Some text.")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPolishParagraphs(t *testing.T) {
	input := "Good paragraph.\n\n37\n\nUntidy paragraph   here."

	pol := &stubPolisher{polish: func(p string) (string, error) {
		switch {
		case p == "37":
			return refiner.JunkSentinel, nil
		case strings.Contains(p, "Untidy"):
			return "Untidy paragraph here.", nil
		default:
			return p, nil
		}
	}}

	res, err := PolishParagraphs(context.Background(), pol, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Good paragraph.\n\nUntidy paragraph here."
	if res.Text != want {
		t.Errorf("unexpected polished text:\ngot  %q\nwant %q", res.Text, want)
	}
	if res.Paragraphs != 3 {
		t.Errorf("expected 3 paragraphs, got %d", res.Paragraphs)
	}
	if res.ParagraphsDropped != 1 {
		t.Errorf("expected 1 dropped paragraph, got %d", res.ParagraphsDropped)
	}
	if res.ParagraphsPolished != 1 {
		t.Errorf("expected 1 polished paragraph, got %d", res.ParagraphsPolished)
	}
}

func TestPolishParagraphs_ErrorKeepsParagraph(t *testing.T) {
	input := "First paragraph.\n\nSecond paragraph."

	pol := &stubPolisher{polish: func(p string) (string, error) {
		if strings.Contains(p, "Second") {
			return "", errors.New("model offline")
		}
		return p, nil
	}}

	res, err := PolishParagraphs(context.Background(), pol, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != input {
		t.Errorf("failed polish must keep the paragraph:\ngot  %q\nwant %q", res.Text, input)
	}
	if res.PolishesFailed != 1 {
		t.Errorf("expected 1 failed polish, got %d", res.PolishesFailed)
	}
	if res.ParagraphsPolished != 0 {
		t.Errorf("expected 0 polished paragraphs, got %d", res.ParagraphsPolished)
	}
}

func TestPolishParagraphs_Empty(t *testing.T) {
	pol := &stubPolisher{polish: func(p string) (string, error) {
		t.Errorf("unexpected polish call for %q", p)
		return p, nil
	}}

	res, err := PolishParagraphs(context.Background(), pol, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "" || res.Paragraphs != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}
