package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a segment search.
type Params struct {
	Query     string // User's search query
	EpisodeID string // Restrict to one episode (empty = all episodes)
	TopK      int    // Maximum hits to return
}

// Result holds segment search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching segment with enough context to jump into
// playback at the right chapter and timestamp.
type Hit struct {
	EpisodeID    string  `json:"episode_id"`
	ChapterID    int     `json:"chapter_id"`
	SegmentStart float64 `json:"segment_start"`
	SegmentEnd   float64 `json:"segment_end"`
	Snippet      string  `json:"snippet"`
	Score        float64 `json:"score"`
}

// Search executes a segment search, returning the top-k ranked hits.
func (s *SegmentIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topK := params.TopK
	if topK <= 0 {
		topK = 5
	}

	searchQuery := buildSegmentQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, topK, 0, false)
	searchRequest.SortBy([]string{"-_score"})
	searchRequest.Fields = []string{"episode_id", "chapter_id", "start", "end", "text"}

	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField("text")

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		segmentHit := Hit{
			Score: hit.Score,
		}

		if id, ok := hit.Fields["episode_id"].(string); ok {
			segmentHit.EpisodeID = id
		}
		if ch, ok := hit.Fields["chapter_id"].(float64); ok {
			segmentHit.ChapterID = int(ch)
		}
		if start, ok := hit.Fields["start"].(float64); ok {
			segmentHit.SegmentStart = start
		}
		if end, ok := hit.Fields["end"].(float64); ok {
			segmentHit.SegmentEnd = end
		}

		// Prefer a highlighted fragment for the snippet, fall back to
		// the stored segment text.
		if fragments, ok := hit.Fragments["text"]; ok && len(fragments) > 0 {
			segmentHit.Snippet = fragments[0]
		} else if text, ok := hit.Fields["text"].(string); ok {
			segmentHit.Snippet = text
		}

		result.Hits = append(result.Hits, segmentHit)
	}

	return result, nil
}

// buildSegmentQuery constructs the Bleve query from params.
func buildSegmentQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		textMatch := bleve.NewMatchQuery(params.Query)
		textMatch.SetField("text")
		textMatch.SetBoost(2.0)
		textQueries = append(textQueries, textMatch)

		// Fuzzy matching for typo tolerance
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("text")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.EpisodeID != "" {
		episodeQuery := bleve.NewTermQuery(params.EpisodeID)
		episodeQuery.SetField("episode_id")
		queries = append(queries, episodeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
