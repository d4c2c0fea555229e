package pruner

import (
	"fmt"
	"strings"
	"testing"
)

func TestPrune(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start string
		end   string
		want  string
	}{
		{
			name:  "cuts front and back matter",
			text:  "junk\n\n1 Introduction\nBody text.\n\nReferences\n[1] X.",
			start: "1 Introduction",
			end:   "References",
			want:  "Body text.",
		},
		{
			name:  "spans paragraphs",
			text:  "Title page\n\nStart Here\nFirst paragraph.\n\nSecond paragraph.\n\nAppendix A\nTables.",
			start: "Start Here",
			end:   "Appendix A",
			want:  "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:  "cuts at first end occurrence",
			text:  "1 Introduction\nBody.\n\nReferences\nTail\n\nReferences again",
			start: "1 Introduction",
			end:   "References",
			want:  "Body.",
		},
		{
			name:  "heading metacharacters are literal",
			text:  "front\n\n1. Introduction (overview)\nThe body.\n\n[References]\nmore",
			start: "1. Introduction (overview)",
			end:   "[References]",
			want:  "The body.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Prune(tt.text, tt.start, tt.end); got != tt.want {
				t.Errorf("Prune() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrune_NoMatchReturnsInput(t *testing.T) {
	text := "junk\n\n1 Introduction\nBody text.\n\nNotes\n[1] X."

	if got := Prune(text, "1 Introduction", "References"); got != text {
		t.Errorf("missing end heading must return input unchanged, got %q", got)
	}
	if got := Prune(text, "2 Methods", "Notes"); got != text {
		t.Errorf("missing start heading must return input unchanged, got %q", got)
	}
}

func TestPrune_EndBeforeStartReturnsInput(t *testing.T) {
	text := "References early\n\n1 Introduction\nBody text."

	if got := Prune(text, "1 Introduction", "References"); got != text {
		t.Errorf("end heading before start must return input unchanged, got %q", got)
	}
}

func TestPrune_EmptyHeadingsReturnInput(t *testing.T) {
	text := "1 Introduction\nBody text.\n\nReferences"

	if got := Prune(text, "", "References"); got != text {
		t.Errorf("empty start heading must return input unchanged, got %q", got)
	}
	if got := Prune(text, "1 Introduction", ""); got != text {
		t.Errorf("empty end heading must return input unchanged, got %q", got)
	}
}

func TestShouldDetect(t *testing.T) {
	short := make([]string, MinDetectParagraphs-1)
	for i := range short {
		short[i] = fmt.Sprintf("Paragraph %d.", i)
	}
	if ShouldDetect(strings.Join(short, "\n\n")) {
		t.Errorf("expected detection skipped for %d paragraphs", len(short))
	}

	long := append(short, "One more paragraph.")
	if !ShouldDetect(strings.Join(long, "\n\n")) {
		t.Errorf("expected detection for %d paragraphs", len(long))
	}
}

func TestBuildSample_ShortDocumentPassesThrough(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."

	sample := BuildSample(text)
	if sample != text {
		t.Errorf("short document changed:\ngot  %q\nwant %q", sample, text)
	}
	if strings.Contains(sample, truncationMarker) {
		t.Error("short document must not be truncated")
	}
}

func TestBuildSample_LongDocumentTruncated(t *testing.T) {
	paragraphs := make([]string, 2*SampleParagraphs+1)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Paragraph number %d ends here.", i)
	}
	text := strings.Join(paragraphs, "\n\n")

	sample := BuildSample(text)
	if !strings.Contains(sample, truncationMarker) {
		t.Fatal("long document must contain the truncation marker")
	}
	if !strings.Contains(sample, "Paragraph number 0 ends here.") {
		t.Error("sample must keep the document head")
	}
	if !strings.Contains(sample, fmt.Sprintf("Paragraph number %d ends here.", len(paragraphs)-1)) {
		t.Error("sample must keep the document tail")
	}
	if strings.Contains(sample, fmt.Sprintf("Paragraph number %d ends here.", SampleParagraphs)) {
		t.Error("middle paragraph must be cut from the sample")
	}
}
