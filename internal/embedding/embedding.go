// Package embedding provides text embedding via an OpenAI-compatible
// embeddings endpoint.
package embedding

import (
	"context"
	"errors"
)

// Embedder turns texts into fixed-dimension vectors. Implementations must
// return one vector per input, in input order, and a zero-length result for
// zero inputs.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
}

// Sentinel errors for embedding operations.
var (
	ErrUnavailable = errors.New("embedding: server unavailable")
	ErrRateLimited = errors.New("embedding: rate limited by server")
	ErrBadRequest  = errors.New("embedding: bad request")
	ErrDimension   = errors.New("embedding: unexpected vector dimension")
)
