package index

import (
	"go.uber.org/zap"

	"emptrack/internal/domain"
	"emptrack/internal/source"
	"emptrack/internal/summary"
)

// View is a read handle on the index state, valid only inside the
// callback passed to Index.View.
type View struct {
	ix    *Index
	state *State
}

// Ready reports whether an index is built.
func (v View) Ready() bool { return v.state != nil }

// Summarizer returns the summariser of the live state, or nil.
func (v View) Summarizer() *summary.Summarizer {
	if v.state == nil {
		return nil
	}
	return v.state.Summarizer
}

// Directory returns the employee directory of the live state.
func (v View) Directory() *source.Directory {
	if v.state == nil {
		return nil
	}
	return v.state.Summarizer.Snapshot().Directory
}

// Search embeds query and returns up to k hits. Failures are logged
// and yield no hits.
func (v View) Search(query string, k int) []domain.SearchResult {
	if v.state == nil {
		return nil
	}
	if n := len(v.state.IDs); k > n {
		k = n
	}
	vecs, err := v.ix.embedder.Embed([]string{query})
	if err != nil || len(vecs) != 1 {
		v.ix.logger.Warn("embedding query failed", zap.Error(err))
		return nil
	}
	if len(vecs[0]) != v.state.Dim {
		// embedder switched space since the build; force a rebuild
		v.ix.logger.Warn("query dimension mismatch", zap.Int("want", v.state.Dim), zap.Int("got", len(vecs[0])))
		v.state.LastRefresh = v.state.LastRefresh.Add(-v.ix.ttl - 1)
		return nil
	}
	hits, err := v.state.Store.Search(vecs[0], k)
	if err != nil {
		v.ix.logger.Warn("vector search failed", zap.Error(err))
		return nil
	}
	return hits
}
