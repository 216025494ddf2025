// Package enrich generates chapter summaries and keywords, using an LLM
// when one is configured and deterministic local strategies otherwise.
package enrich

import (
	"context"
	"errors"
	"sort"
)

// Summarizer produces a short prose summary of a transcript text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// KeywordExtractor extracts up to maxKeywords keywords from a transcript text.
type KeywordExtractor interface {
	Keywords(ctx context.Context, text string, maxKeywords int) ([]string, error)
}

// Sentinel errors for LLM enrichment operations.
var (
	ErrUnavailable   = errors.New("enrich: llm unavailable")
	ErrRateLimited   = errors.New("enrich: rate limited by llm")
	ErrBadRequest    = errors.New("enrich: bad request")
	ErrEmptyResponse = errors.New("enrich: empty llm response")
	ErrNoAPIKey      = errors.New("enrich: api key not configured")
)

// GlobalKeywords aggregates per-chapter keyword lists into the topN most
// frequent keywords across the episode. Ties break on first appearance, so
// the result is deterministic for a given chapter order.
func GlobalKeywords(keywordLists [][]string, topN int) []string {
	if topN <= 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	for _, keywords := range keywordLists {
		for _, kw := range keywords {
			if _, seen := counts[kw]; !seen {
				firstSeen[kw] = len(order)
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > topN {
		order = order[:topN]
	}
	return order
}
