package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func norm(v []float32) float64 {
	s := 0.0
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestBlend_WeightsTowardFirst(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	got := Blend(a, b, 0.8)
	assert.InDelta(t, 1.0, norm(got), 1e-6)
	assert.Greater(t, got[0], got[1])
	assert.InDelta(t, 4.0, float64(got[0]/got[1]), 1e-5)

	same := Blend(a, a, 0.8)
	assert.InDelta(t, 1.0, float64(same[0]), 1e-6)
	assert.Zero(t, same[1])
}
