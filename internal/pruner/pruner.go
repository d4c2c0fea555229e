// Package pruner trims front matter and back matter from a document by
// cutting everything outside a start/end heading pair. Headings are either
// supplied by the caller or proposed by a Finder oracle shown a sample of
// the document's first and last paragraphs. Pruning never fails: when a
// heading is missing or cannot be found, the text passes through unchanged.
package pruner

import (
	"regexp"
	"strings"

	"github.com/docpolish/docpolish/internal/chunker"
)

const (
	// SampleParagraphs is how many paragraphs from each end of the document
	// go into the heading detection sample.
	SampleParagraphs = 20
	// MinDetectParagraphs is the document size below which heading detection
	// is skipped; short documents rarely carry prunable front matter.
	MinDetectParagraphs = 10
	// truncationMarker separates the head and tail of a sampled document.
	truncationMarker = "...[DOCUMENT TRUNCATED]..."
)

// Prune returns the text strictly between the first occurrence of
// startHeading and the first occurrence of endHeading after it, trimmed.
// Both headings match literally. When either heading is empty or no such
// span exists, the input comes back unchanged.
func Prune(text, startHeading, endHeading string) string {
	if startHeading == "" || endHeading == "" {
		return text
	}
	re, err := regexp.Compile("(?s)" + regexp.QuoteMeta(startHeading) + "(.*?)" + regexp.QuoteMeta(endHeading))
	if err != nil {
		return text
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return strings.TrimSpace(m[1])
}

// ShouldDetect reports whether the document is long enough for heading
// detection to be worth an oracle call.
func ShouldDetect(text string) bool {
	return len(chunker.SplitParagraphs(text)) >= MinDetectParagraphs
}

// BuildSample returns the document text a Finder sees: short documents go
// through whole, long ones are cut to the first and last SampleParagraphs
// paragraphs around a truncation marker.
func BuildSample(text string) string {
	paragraphs := chunker.SplitParagraphs(text)
	if len(paragraphs) <= 2*SampleParagraphs {
		return chunker.JoinParagraphs(paragraphs)
	}
	parts := make([]string, 0, 2*SampleParagraphs+1)
	parts = append(parts, paragraphs[:SampleParagraphs]...)
	parts = append(parts, truncationMarker)
	parts = append(parts, paragraphs[len(paragraphs)-SampleParagraphs:]...)
	return chunker.JoinParagraphs(parts)
}
