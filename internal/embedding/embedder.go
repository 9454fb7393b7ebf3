// Package embedding turns free-text item descriptions into fixed-length
// vectors for semantic matching.
package embedding

import "context"

// Embedder converts text into a 384-dimensional embedding vector.
// Implementations must be deterministic for identical input and safe for
// concurrent use; the empty string embeds like any other input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
