// Package refiner rewrites text whose structure the extraction process
// broke. A Refiner repairs whole chunks flagged by the arbiter; a Polisher
// gives individual paragraphs a final cleanup pass. Both are deliberately
// conservative: on an empty model reply the adapters hand back the input
// unchanged, so a misbehaving model can never eat text.
package refiner

import "context"

// JunkSentinel is the exact reply a polishing model gives for a paragraph
// that is pure extraction debris and should be dropped.
const JunkSentinel = "JUNK"

// Refiner repairs the paragraph and sentence structure of a chunk flagged
// by the arbiter. reason carries the arbiter's justification to steer the
// fix; it may be empty.
type Refiner interface {
	Repair(ctx context.Context, chunkText, reason string) (string, error)
}

// Polisher applies a per-paragraph cleanup pass. It may return JunkSentinel
// to signal that the paragraph should be removed entirely.
type Polisher interface {
	Polish(ctx context.Context, paragraph string) (string, error)
}
