package sparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptrack/internal/domain"
)

func norm(v []float32) float64 {
	s := 0.0
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func dot(a, b []float32) float64 {
	s := 0.0
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"asha", "e001", "checked-in", "80.00"}, Tokenize("Asha (E001), Checked-in: 80.00%"))
	assert.Empty(t, Tokenize("  ... ---  "))
}

func TestEmbedder_Unprepared(t *testing.T) {
	_, err := NewEmbedder().Embed([]string{"x"})
	assert.ErrorIs(t, err, domain.ErrNotPrepared)
}

func TestEmbedder_EmptyCorpus(t *testing.T) {
	assert.ErrorIs(t, NewEmbedder().Prepare(nil), domain.ErrEmptyCorpus)
}

func TestEmbedder_UnitNormAndVocab(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"on leave today", "checked in today"}))
	assert.Equal(t, []string{"checked", "in", "leave", "on", "today"}, e.Vocabulary())
	assert.Equal(t, 5, e.Dimension())

	vecs, err := e.Embed([]string{"on leave today today", "unknown words", "who is on leave today"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.InDelta(t, 1.0, norm(vecs[0]), 1e-6)
	assert.Equal(t, 0.0, norm(vecs[1]))
	// today counted twice
	assert.Greater(t, vecs[0][4], vecs[0][3])

	docs, err := e.Embed([]string{"on leave today", "checked in today"})
	require.NoError(t, err)
	assert.Greater(t, dot(vecs[2], docs[0]), dot(vecs[2], docs[1]))
}

func TestEmbedder_VocabularyRebuilt(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"alpha"}))
	require.NoError(t, e.Prepare([]string{"beta gamma"}))
	assert.Equal(t, []string{"beta", "gamma"}, e.Vocabulary())
}
