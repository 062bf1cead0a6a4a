package embedding

import "math"

// Embedder maps text to unit-norm vectors usable with inner-product
// search. Implementations may require a preparation phase over the
// corpus; documents and queries must go through the same instance.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(texts []string) ([][]float32, error)
}

// normFloor keeps zero vectors zero instead of dividing by zero.
const normFloor = 1e-12

// Normalize scales v to unit L2 norm in place and returns it.
func Normalize(v []float32) []float32 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Max(math.Sqrt(sum), normFloor)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Blend returns the unit vector of w*a + (1-w)*b. Both inputs are
// expected to be unit vectors of the same length.
func Blend(a, b []float32, w float64) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		v := w * float64(a[i])
		if i < len(b) {
			v += (1 - w) * float64(b[i])
		}
		out[i] = float32(v)
	}
	return Normalize(out)
}
