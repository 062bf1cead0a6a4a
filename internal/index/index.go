// Package index owns the searchable employee corpus: it rebuilds the
// embeddings and vector store from the sources under a single mutex
// and serves queries against the live state.
package index

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"emptrack/internal/document"
	"emptrack/internal/domain"
	"emptrack/internal/embedding"
	"emptrack/internal/source"
	"emptrack/internal/summary"
	"emptrack/internal/vectorstore"
)

// DefaultTTL is how long a built index is served before a query
// triggers a rebuild.
const DefaultTTL = 30 * time.Second

// anchorWeight is the share of an anchored document's vector taken by
// its anchor.
const anchorWeight = 0.8

// Transition records what a query did to the index state.
type Transition int

const (
	Reused Transition = iota
	Refreshed
	// RefreshFailed means a rebuild was due but did not complete.
	RefreshFailed
)

func (t Transition) String() string {
	switch t {
	case Refreshed:
		return "refreshed"
	case RefreshFailed:
		return "refresh_failed"
	}
	return "reused"
}

// State is one built index.
type State struct {
	Store       vectorstore.Storage
	IDs         []string
	Texts       []string
	Metas       []domain.Metadata
	Dim         int
	LastRefresh time.Time
	Vocab       []string
	Summarizer  *summary.Summarizer
}

// Index is the lock-protected index lifecycle.
type Index struct {
	mu         sync.Mutex
	provider   source.Provider
	embedder   embedding.Embedder
	newStore   func() vectorstore.Storage
	ttl        time.Duration
	lateAfter  time.Duration
	persistDir string
	now        func() time.Time
	logger     *zap.Logger
	state      *State
}

type Option func(*Index)

func WithTTL(ttl time.Duration) Option {
	return func(ix *Index) {
		if ttl > 0 {
			ix.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option { return func(ix *Index) { ix.now = now } }

func WithLateAfter(d time.Duration) Option { return func(ix *Index) { ix.lateAfter = d } }

// WithPersistDir enables best-effort persistence after dense rebuilds.
func WithPersistDir(dir string) Option { return func(ix *Index) { ix.persistDir = dir } }

func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l.Named("index")
		}
	}
}

// New creates an empty index. newStore is called once per rebuild.
func New(provider source.Provider, emb embedding.Embedder, newStore func() vectorstore.Storage, opts ...Option) *Index {
	ix := &Index{
		provider: provider,
		embedder: emb,
		newStore: newStore,
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   zap.L().Named("index"),
	}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// Refresh rebuilds the index unconditionally.
func (ix *Index) Refresh() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.refreshLocked()
}

// State returns the live state, or nil when none is built.
func (ix *Index) State() *State {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.state
}

// View runs fn under the index lock against a fresh state, rebuilding
// first when the state is missing or older than the TTL.
func (ix *Index) View(fn func(v View)) Transition {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	tr := Reused
	if ix.stale() {
		tr = Refreshed
		if !ix.refreshLocked() {
			tr = RefreshFailed
		}
	}
	fn(View{ix: ix, state: ix.state})
	return tr
}

func (ix *Index) stale() bool {
	return ix.state == nil || ix.now().Sub(ix.state.LastRefresh) > ix.ttl
}

func (ix *Index) refreshLocked() bool {
	start := ix.now()
	sum := summary.New(ix.provider.Load(), start, ix.lateAfter)
	docs := document.Build(sum)
	if len(docs) == 0 {
		ix.logger.Warn("empty corpus, clearing index")
		ix.state = nil
		return false
	}

	texts := make([]string, len(docs))
	ids := make([]string, len(docs))
	metas := make([]domain.Metadata, len(docs))
	for i, d := range docs {
		texts[i], ids[i], metas[i] = d.Text, d.ID, d.Metadata
	}
	if err := ix.embedder.Prepare(texts); err != nil {
		ix.logger.Error("embedder prepare failed", zap.Error(err))
		return false
	}
	vecs, err := ix.embed(docs, texts)
	if err != nil {
		ix.logger.Error("embedding corpus failed", zap.Error(err))
		return false
	}
	dim := ix.embedder.Dimension()

	store := ix.newStore()
	if err := ix.load(store, docs, vecs, dim); err != nil {
		ix.logger.Error("vector store rebuild failed", zap.Error(err))
		if vectorstore.IsShared(store) {
			// the live state searched the backend that was just cleared
			ix.logger.Warn("live index dropped with its backend")
			ix.state = nil
		}
		return false
	}

	stamp := ix.now()
	if ix.state != nil && !stamp.After(ix.state.LastRefresh) {
		stamp = ix.state.LastRefresh.Add(time.Nanosecond)
	}
	st := &State{
		Store:       store,
		IDs:         ids,
		Texts:       texts,
		Metas:       metas,
		Dim:         dim,
		LastRefresh: stamp,
		Summarizer:  sum,
	}
	if v, ok := ix.embedder.(interface{ Vocabulary() []string }); ok {
		st.Vocab = v.Vocabulary()
	}
	ix.state = st
	ix.logger.Debug("index rebuilt",
		zap.String("embedder", ix.embedder.Name()),
		zap.Int("documents", len(docs)),
		zap.Int("dimension", dim),
	)
	ix.persist(store)
	return true
}

// embed vectorises the corpus. Anchored documents get their anchor
// blended in at anchorWeight. Texts and anchors go through one Embed
// call so both land in the same space.
func (ix *Index) embed(docs []domain.Document, texts []string) ([][]float32, error) {
	inputs := append([]string(nil), texts...)
	anchorOf := map[int]int{}
	for i, d := range docs {
		if d.Anchor != "" {
			anchorOf[i] = len(inputs)
			inputs = append(inputs, d.Anchor)
		}
	}
	all, err := ix.embedder.Embed(inputs)
	if err != nil {
		return nil, err
	}
	if len(all) != len(inputs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(all), len(inputs))
	}
	vecs := all[:len(texts)]
	for i, j := range anchorOf {
		vecs[i] = embedding.Blend(all[j], vecs[i], anchorWeight)
	}
	return vecs, nil
}

func (ix *Index) load(store vectorstore.Storage, docs []domain.Document, vecs [][]float32, dim int) error {
	if err := store.Clear(); err != nil {
		ix.logger.Warn("clearing vector store failed", zap.Error(err))
	}
	if err := store.Init(dim); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := store.Upsert(docs, vecs); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (ix *Index) persist(store vectorstore.Storage) {
	if ix.persistDir == "" {
		return
	}
	if d, ok := ix.embedder.(interface{ Dense() bool }); !ok || !d.Dense() {
		return
	}
	p, ok := store.(vectorstore.Persister)
	if !ok {
		return
	}
	if err := p.Save(ix.persistDir); err != nil {
		ix.logger.Debug("persisting index failed", zap.String("dir", ix.persistDir), zap.Error(err))
	}
}
