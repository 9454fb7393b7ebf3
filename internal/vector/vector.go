// Package vector encodes fixed-length embedding vectors for BLOB storage and
// computes cosine distance between them.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/whereismy/whereismy/internal/model"
)

// Dim is the embedding dimension. It matches the sentence-embedding model
// (paraphrase-multilingual-MiniLM-L12-v2) and the width of the items.vector
// column; distance comparisons are undefined for any other length.
const Dim = 384

// Encode serializes a vector as little-endian float32s.
func Encode(v []float32) ([]byte, error) {
	if len(v) != Dim {
		return nil, fmt.Errorf("%w: vector has %d components, want %d", model.ErrValidation, len(v), Dim)
	}
	buf := make([]byte, 4*Dim)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf, nil
}

// Decode deserializes a vector encoded by Encode.
func Decode(buf []byte) ([]float32, error) {
	if len(buf) != 4*Dim {
		return nil, fmt.Errorf("%w: vector blob is %d bytes, want %d", model.ErrValidation, len(buf), 4*Dim)
	}
	v := make([]float32, Dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}

// CosineDistance returns 1 - cos(a, b), in [0, 2]. A zero-norm operand has no
// direction; the distance is defined as 1 (orthogonal) so such vectors rank
// behind close matches without producing NaN.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	// A single sqrt keeps identical vectors at exactly 0: dot equals the
	// norm product and sqrt(x*x) rounds back to x.
	d := 1 - dot/math.Sqrt(na*nb)
	// Rounding can still push the result a few ulps outside [0, 2].
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}
