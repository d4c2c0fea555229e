// Package chunker groups an ordered paragraph sequence into overlapping
// windows so that a document can be processed in bounded-size pieces. The
// overlap guarantees that a sentence split across a window boundary still
// appears whole in at least one window.
package chunker

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the default number of paragraphs per window.
	DefaultSize = 5
	// DefaultOverlap is the default number of paragraphs shared between
	// adjacent windows.
	DefaultOverlap = 1
)

// ParagraphSeparator is the blank-line convention separating paragraphs in
// document text.
const ParagraphSeparator = "\n\n"

// Window is a contiguous run of paragraphs starting at index Start within
// the source document.
type Window struct {
	Start      int
	Paragraphs []string
}

// Text joins the window's paragraphs with the paragraph separator.
func (w Window) Text() string {
	return strings.Join(w.Paragraphs, ParagraphSeparator)
}

// Chunk slices paragraphs into overlapping windows of at most size
// paragraphs. When the document fits in a single window, one window holding
// everything is returned. Otherwise windows start at 0, step, 2*step, …
// where step = size − overlap, each clipped to the paragraph count; starts
// run to the last paragraph index, so the final window can be short and may
// repeat only paragraphs the previous window already covered. Reassembly
// dedup downstream absorbs that repetition.
//
// Every paragraph index appears in at least one window, and consecutive
// windows share exactly overlap paragraphs (except possibly the final,
// shorter window).
func Chunk(paragraphs []string, size, overlap int) ([]Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap cannot be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	if len(paragraphs) == 0 {
		return nil, nil
	}

	if len(paragraphs) <= size {
		return []Window{{Start: 0, Paragraphs: paragraphs}}, nil
	}

	step := size - overlap
	var windows []Window
	for start := 0; start < len(paragraphs); start += step {
		end := start + size
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		windows = append(windows, Window{Start: start, Paragraphs: paragraphs[start:end]})
	}
	return windows, nil
}

// SplitParagraphs splits text on blank-line boundaries into trimmed,
// non-empty paragraphs.
func SplitParagraphs(text string) []string {
	parts := strings.Split(text, ParagraphSeparator)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// JoinParagraphs is the inverse of SplitParagraphs.
func JoinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, ParagraphSeparator)
}
