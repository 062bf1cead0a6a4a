package embedding

import (
	"sync"

	"go.uber.org/zap"
)

// Fallback prefers a dense primary embedder and switches to the
// secondary (sparse) one when the primary fails. Every Prepare retries
// the primary; the active choice then holds until the next Prepare so
// queries use the same space as the documents.
type Fallback struct {
	mu        sync.Mutex
	primary   Embedder
	secondary Embedder
	active    Embedder
	corpus    []string
	logger    *zap.Logger
}

// NewFallback wraps primary and secondary. A nil primary always uses
// the secondary.
func NewFallback(primary, secondary Embedder, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.L()
	}
	f := &Fallback{primary: primary, secondary: secondary, logger: logger.Named("embedding")}
	f.active = secondary
	if primary != nil {
		f.active = primary
	}
	return f
}

func (f *Fallback) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active.Name()
}

// Dense reports whether the primary embedder is active.
func (f *Fallback) Dense() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.primary != nil && f.active == f.primary
}

func (f *Fallback) Prepare(corpus []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corpus = corpus
	if f.primary != nil {
		err := f.primary.Prepare(corpus)
		if err == nil {
			f.active = f.primary
			return nil
		}
		f.logger.Warn("dense embedder prepare failed, using sparse fallback", zap.Error(err))
	}
	f.active = f.secondary
	return f.secondary.Prepare(corpus)
}

func (f *Fallback) Dimension() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active.Dimension()
}

func (f *Fallback) Embed(texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vecs, err := f.active.Embed(texts)
	if err == nil || f.active == f.secondary {
		return vecs, err
	}
	f.logger.Warn("dense embedder failed, switching to sparse fallback", zap.Error(err))
	f.active = f.secondary
	if err := f.secondary.Prepare(f.corpus); err != nil {
		return nil, err
	}
	return f.secondary.Embed(texts)
}

// Vocabulary returns the sparse vocabulary when the secondary is
// active and exposes one.
func (f *Fallback) Vocabulary() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.active.(interface{ Vocabulary() []string }); ok {
		return v.Vocabulary()
	}
	return nil
}
