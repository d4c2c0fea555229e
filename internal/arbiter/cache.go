package arbiter

import (
	"context"

	"github.com/docpolish/docpolish/internal/logger"
	"github.com/docpolish/docpolish/internal/store"
)

// CachingArbiter wraps another arbiter with the persistent classification
// cache. Hits skip the model call entirely. Only successful classifications
// are written back, so a transient failure is retried on the next run
// instead of being replayed from the cache.
type CachingArbiter struct {
	inner Arbiter
	store *store.Store
	model string
}

// NewCachingArbiter wraps inner with cache lookups keyed by chunk content
// and model name.
func NewCachingArbiter(inner Arbiter, st *store.Store, model string) *CachingArbiter {
	return &CachingArbiter{inner: inner, store: st, model: model}
}

// Classify returns the cached verdict when available, otherwise delegates to
// the wrapped arbiter and caches the result. Cache errors degrade to a
// normal model call.
func (a *CachingArbiter) Classify(ctx context.Context, chunkText string) (*Classification, error) {
	score, reason, found, err := a.store.CachedClassification(ctx, chunkText, a.model)
	if err != nil {
		logger.Warn("classification cache lookup failed", "error", err)
	} else if found {
		return &Classification{Score: score, Reason: reason}, nil
	}

	cls, err := a.inner.Classify(ctx, chunkText)
	if err != nil {
		return nil, err
	}

	if err := a.store.SaveClassification(ctx, chunkText, a.model, cls.Score, cls.Reason); err != nil {
		logger.Warn("failed to cache classification", "error", err)
	}
	return cls, nil
}
