package segmentation

import (
	"math"
	"sort"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/errors"
)

// cosineEpsilon guards the similarity denominator against division by zero.
const cosineEpsilon = 1e-8

// DetectBoundaries returns the window indices at which a new chapter starts.
//
// Index 0 is always a boundary. For each adjacent window pair the cosine
// similarity of their embeddings is compared against threshold; a pair less
// similar than the threshold starts a new chapter at the later window. A
// zero-norm embedding makes its pairs maximally dissimilar, so degenerate
// windows never silently merge with a neighbor.
//
// The result is sorted ascending and deduplicated. Embeddings must align
// with windows by index; a length mismatch is an error.
func DetectBoundaries(windows []domain.Window, embeddings [][]float32, threshold float64) ([]int, error) {
	if len(embeddings) != len(windows) {
		return nil, errors.DimensionMismatchf("got %d embeddings for %d windows", len(embeddings), len(windows))
	}
	if len(windows) == 0 {
		return nil, nil
	}
	if len(windows) == 1 {
		return []int{0}, nil
	}

	starts := []int{0}
	for i := 1; i < len(windows); i++ {
		if cosineSimilarity(embeddings[i-1], embeddings[i]) < threshold {
			starts = append(starts, i)
		}
	}

	// The ascending scan already yields sorted unique indices, but the
	// contract is sort-and-dedupe, not scan order.
	sort.Ints(starts)
	return dedupe(starts), nil
}

// cosineSimilarity returns the cosine similarity of two vectors in [-1, 1].
// Zero-norm vectors are treated as maximally dissimilar.
func cosineSimilarity(a, b []float32) float64 {
	var dot, aNorm, bNorm float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		aNorm += float64(a[i]) * float64(a[i])
		bNorm += float64(b[i]) * float64(b[i])
	}

	if aNorm == 0 || bNorm == 0 {
		return -1
	}
	return dot / (math.Sqrt(aNorm)*math.Sqrt(bNorm) + cosineEpsilon)
}

func dedupe(sorted []int) []int {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
