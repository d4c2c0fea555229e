// Package refine drives the classify-then-repair loop over a document. The
// text is split into overlapping windows of paragraphs, each window is
// graded by an arbiter, and windows scoring below the threshold are sent to
// a refiner for structural repair. Classification fails closed (an
// unreachable or incoherent arbiter forces repair) while repair fails open
// (a failed repair keeps the original text), so the worst case is always
// the input text, never silence.
package refine

import (
	"context"
	"errors"
	"strings"

	"github.com/docpolish/docpolish/internal/arbiter"
	"github.com/docpolish/docpolish/internal/chunker"
	"github.com/docpolish/docpolish/internal/logger"
	"github.com/docpolish/docpolish/internal/refiner"
	"github.com/docpolish/docpolish/internal/validator"
)

// DefaultScoreThreshold is the minimum acceptable quality score. Chunks
// graded below it are repaired.
const DefaultScoreThreshold = 7

// Options configures the refinement engine.
type Options struct {
	// ChunkSize is the number of paragraphs per window. Zero means
	// chunker.DefaultSize.
	ChunkSize int
	// ChunkOverlap is the number of paragraphs shared between consecutive
	// windows. Zero means no overlap.
	ChunkOverlap int
	// ScoreThreshold is the minimum acceptable quality score; chunks
	// scoring below it are repaired. Zero means DefaultScoreThreshold.
	ScoreThreshold int
}

// Engine runs the refinement loop with a fixed arbiter and refiner.
type Engine struct {
	arb  arbiter.Arbiter
	rep  refiner.Refiner
	val  *validator.Validator
	opts Options
}

// New builds an Engine. val may be nil to skip the repair acceptance guard.
func New(arb arbiter.Arbiter, rep refiner.Refiner, val *validator.Validator, opts Options) *Engine {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = chunker.DefaultSize
	}
	if opts.ScoreThreshold == 0 {
		opts.ScoreThreshold = DefaultScoreThreshold
	}
	return &Engine{arb: arb, rep: rep, val: val, opts: opts}
}

// Result reports what Refine did to one document.
type Result struct {
	Text              string
	Paragraphs        int
	ChunksTotal       int
	ChunksFlagged     int
	ChunksRepaired    int
	RepairsFailed     int
	DuplicatesDropped int
}

// Refine runs the full classify-then-repair loop over text and returns the
// reassembled document. Empty input returns an empty result without any
// model calls.
func (e *Engine) Refine(ctx context.Context, text string) (*Result, error) {
	paragraphs := chunker.SplitParagraphs(text)
	res := &Result{Paragraphs: len(paragraphs)}
	if len(paragraphs) == 0 {
		return res, nil
	}

	windows, err := chunker.Chunk(paragraphs, e.opts.ChunkSize, e.opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	res.ChunksTotal = len(windows)

	pieces := make([]string, 0, len(windows))
	for _, win := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunkText := win.Text()

		score, reason := e.classify(ctx, chunkText)
		if score >= e.opts.ScoreThreshold {
			pieces = append(pieces, chunkText)
			continue
		}
		res.ChunksFlagged++

		repaired, err := e.rep.Repair(ctx, chunkText, reason)
		if err != nil {
			logger.Warn("repair failed, keeping original chunk", "error", err)
			res.RepairsFailed++
			pieces = append(pieces, chunkText)
			continue
		}
		if strings.TrimSpace(repaired) == "" {
			logger.Warn("repair returned nothing, keeping original chunk")
			res.RepairsFailed++
			pieces = append(pieces, chunkText)
			continue
		}
		if e.val != nil {
			if err := e.val.CheckRepair(chunkText, repaired); err != nil {
				logger.Warn("repair rejected, keeping original chunk", "error", err)
				res.RepairsFailed++
				pieces = append(pieces, chunkText)
				continue
			}
		}
		res.ChunksRepaired++
		pieces = append(pieces, repaired)
	}

	res.Text, res.DuplicatesDropped = dedupeParagraphs(strings.Join(pieces, chunker.ParagraphSeparator))
	return res, nil
}

// classify runs the arbiter and fails closed: any error counts as the worst
// score so the chunk goes through repair rather than passing unseen. The
// substituted reason describes the failure; a malformed verdict keeps its
// parse detail, anything else collapses to a generic description so that
// transport noise never reaches a repair prompt.
func (e *Engine) classify(ctx context.Context, chunkText string) (int, string) {
	cls, err := e.arb.Classify(ctx, chunkText)
	if err != nil {
		logger.Warn("classification failed, forcing repair", "error", err)
		var malformed *arbiter.MalformedResponseError
		if errors.As(err, &malformed) {
			return 1, malformed.Detail
		}
		return 1, "classification failed"
	}
	return cls.Score, cls.Reason
}

// dedupeParagraphs removes exact duplicate paragraphs, keeping the first
// occurrence. Overlapping windows reproduce their shared paragraphs
// verbatim whenever the model leaves them untouched, and those copies fold
// back into one here. Paragraphs the model rewrote differently no longer
// match exactly and are all kept.
func dedupeParagraphs(text string) (string, int) {
	paragraphs := chunker.SplitParagraphs(text)
	seen := make(map[string]struct{}, len(paragraphs))
	kept := make([]string, 0, len(paragraphs))
	dropped := 0
	for _, p := range paragraphs {
		if _, ok := seen[p]; ok {
			dropped++
			continue
		}
		seen[p] = struct{}{}
		kept = append(kept, p)
	}
	return chunker.JoinParagraphs(kept), dropped
}

// PolishResult reports what PolishParagraphs did.
type PolishResult struct {
	Text               string
	Paragraphs         int
	ParagraphsPolished int
	ParagraphsDropped  int
	PolishesFailed     int
}

// PolishParagraphs runs the per-paragraph cleanup pass over a document.
// Paragraphs the model marks as junk are dropped; on any error the original
// paragraph is kept.
func PolishParagraphs(ctx context.Context, pol refiner.Polisher, text string) (*PolishResult, error) {
	paragraphs := chunker.SplitParagraphs(text)
	res := &PolishResult{Paragraphs: len(paragraphs)}

	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		polished, err := pol.Polish(ctx, p)
		if err != nil {
			logger.Warn("polish failed, keeping original paragraph", "error", err)
			res.PolishesFailed++
			kept = append(kept, p)
			continue
		}
		polished = strings.TrimSpace(polished)
		if polished == refiner.JunkSentinel {
			res.ParagraphsDropped++
			continue
		}
		if polished == "" {
			kept = append(kept, p)
			continue
		}
		if polished != p {
			res.ParagraphsPolished++
		}
		kept = append(kept, polished)
	}

	res.Text = chunker.JoinParagraphs(kept)
	return res, nil
}
