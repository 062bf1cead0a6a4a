package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptrack/internal/domain"
	"emptrack/internal/vectorstore"
)

func docs(ids ...string) []domain.Document {
	out := make([]domain.Document, len(ids))
	for i, id := range ids {
		out[i] = domain.Document{ID: id, Text: id, Metadata: domain.Metadata{Kind: domain.KindEmployee}}
	}
	return out
}

func TestStorage_SearchOrdersAndCaps(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(docs("a", "b", "c"), [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}))

	res, err := s.Search([]float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "b", res[0].Document.ID)
	assert.Equal(t, "c", res[1].Document.ID)
	assert.Equal(t, "a", res[2].Document.ID)
	assert.InDelta(t, 0.8, res[1].Score, 1e-6)
}

func TestStorage_TiesKeepIndexOrder(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(docs("x", "y", "z", "w"), [][]float32{{1, 0}, {1, 0}, {0, 1}, {1, 0}}))

	res, err := s.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"x", "y", "w"}, []string{res[0].Document.ID, res[1].Document.ID, res[2].Document.ID})
}

func TestStorage_Validation(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(0))
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert(docs("a"), nil))
	assert.Error(t, s.Upsert(docs("a"), [][]float32{{1, 0, 0}}))
}

func TestStorage_ClearAndEmptySearch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(1))
	require.NoError(t, s.Upsert(docs("a"), [][]float32{{1}}))
	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	res, err := s.Search([]float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestStorage_Save(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(docs("E001", "agg_wfo_today"), [][]float32{{1, 0}, {0, 1}}))

	dir := filepath.Join(t.TempDir(), "index")
	require.NoError(t, s.Save(dir))

	info, err := os.Stat(filepath.Join(dir, vectorstore.IndexFile))
	require.NoError(t, err)
	// magic + n + dim + 2x2 float32
	assert.Equal(t, int64(4+4+4+16), info.Size())

	data, err := os.ReadFile(filepath.Join(dir, vectorstore.MetaFile))
	require.NoError(t, err)
	var meta vectorstore.Meta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, []string{"E001", "agg_wfo_today"}, meta.IDs)
	assert.Equal(t, domain.KindEmployee, meta.Metas[0].Kind)
}

func TestStorage_NotShared(t *testing.T) {
	assert.False(t, vectorstore.IsShared(NewStorage()))
}
