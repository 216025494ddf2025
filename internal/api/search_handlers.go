package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/podscribeapp/podscribe-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchSegments",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search transcripts",
		Description: "Full-text search over transcript segments across all episodes",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching transcript segments.
type SearchInput struct {
	Query     string `query:"q" minLength:"1" maxLength:"200" required:"true" doc:"Search query"`
	EpisodeID string `query:"episode_id" doc:"Restrict results to one episode"`
	TopK      int    `query:"top_k" minimum:"1" maximum:"100" doc:"Maximum hits to return (default from server config)"`
}

// SearchHitResult is a single matching transcript segment.
type SearchHitResult struct {
	EpisodeID    string  `json:"episode_id" doc:"Episode containing the segment"`
	ChapterID    int     `json:"chapter_id" doc:"Chapter containing the segment"`
	SegmentStart float64 `json:"segment_start" doc:"Segment start in seconds"`
	SegmentEnd   float64 `json:"segment_end" doc:"Segment end in seconds"`
	Snippet      string  `json:"snippet" doc:"Matching text, highlighted when possible"`
	Score        float64 `json:"score" doc:"Search relevance score"`
}

// SearchResponse contains ranked segment search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Ranked results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = s.searchTopK
	}

	result, err := s.index.Search(ctx, search.Params{
		Query:     input.Query,
		EpisodeID: input.EpisodeID,
		TopK:      topK,
	})
	if err != nil {
		s.logger.Error("segment search failed", "error", err, "query", input.Query)
		return nil, err
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
	}
	for _, hit := range result.Hits {
		resp.Hits = append(resp.Hits, SearchHitResult{
			EpisodeID:    hit.EpisodeID,
			ChapterID:    hit.ChapterID,
			SegmentStart: hit.SegmentStart,
			SegmentEnd:   hit.SegmentEnd,
			Snippet:      hit.Snippet,
			Score:        hit.Score,
		})
	}
	return &SearchOutput{Body: resp}, nil
}
