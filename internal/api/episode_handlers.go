package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/id"
)

func (s *Server) registerEpisodeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createEpisode",
		Method:        http.MethodPost,
		Path:          "/api/v1/episodes",
		Summary:       "Create episode",
		Description:   "Registers an episode and starts processing its audio in the background",
		Tags:          []string{"Episodes"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateEpisode)

	huma.Register(s.api, huma.Operation{
		OperationID: "listEpisodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/episodes",
		Summary:     "List episodes",
		Description: "Returns episodes, newest first, optionally filtered by status",
		Tags:        []string{"Episodes"},
	}, s.handleListEpisodes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEpisode",
		Method:      http.MethodGet,
		Path:        "/api/v1/episodes/{id}",
		Summary:     "Get episode",
		Description: "Returns an episode by ID",
		Tags:        []string{"Episodes"},
	}, s.handleGetEpisode)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteEpisode",
		Method:        http.MethodDelete,
		Path:          "/api/v1/episodes/{id}",
		Summary:       "Delete episode",
		Description:   "Deletes an episode and removes its segments from the search index",
		Tags:          []string{"Episodes"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteEpisode)

	huma.Register(s.api, huma.Operation{
		OperationID: "listChapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/episodes/{id}/chapters",
		Summary:     "List chapters",
		Description: "Returns the chapters of a processed episode",
		Tags:        []string{"Chapters"},
	}, s.handleListChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "rechapterEpisode",
		Method:      http.MethodPost,
		Path:        "/api/v1/episodes/{id}/rechapter",
		Summary:     "Re-chapter episode",
		Description: "Recomputes chapters from the stored transcript with a different similarity threshold",
		Tags:        []string{"Chapters"},
	}, s.handleRechapterEpisode)
}

// === DTOs ===

// CreateEpisodeRequest contains the fields for registering an episode.
type CreateEpisodeRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=512" doc:"Episode title"`
	AudioPath string `json:"audio_path" validate:"required,min=1,max=4096" doc:"Path to the episode audio file"`
}

// CreateEpisodeInput wraps the create request for Huma.
type CreateEpisodeInput struct {
	Body CreateEpisodeRequest
}

// EpisodeResponse is the API representation of an episode.
type EpisodeResponse struct {
	ID             string     `json:"id" doc:"Episode ID"`
	Title          string     `json:"title" doc:"Episode title"`
	Status         string     `json:"status" doc:"Processing status: pending, processing, ready, or failed"`
	Error          string     `json:"error,omitempty" doc:"Failure reason when status is failed"`
	AudioPath      string     `json:"audio_path" doc:"Path to the source audio file"`
	DurationSec    float64    `json:"duration_seconds,omitempty" doc:"Audio duration in seconds"`
	ChapterCount   int        `json:"chapter_count" doc:"Number of chapters"`
	SegmentCount   int        `json:"segment_count" doc:"Number of transcript segments"`
	GlobalKeywords []string   `json:"global_keywords,omitempty" doc:"Episode-level keywords"`
	CreatedAt      time.Time  `json:"created_at" doc:"Creation time"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty" doc:"When processing finished"`
	UpdatedAt      time.Time  `json:"updated_at" doc:"Last update time"`
}

// EpisodeOutput wraps a single episode response for Huma.
type EpisodeOutput struct {
	Body EpisodeResponse
}

// ListEpisodesInput contains parameters for listing episodes.
type ListEpisodesInput struct {
	Status string `query:"status" enum:"pending,processing,ready,failed" doc:"Filter by processing status. Omit for all."`
}

// ListEpisodesResponse contains a page of episodes.
type ListEpisodesResponse struct {
	Episodes []EpisodeResponse `json:"episodes" doc:"Episodes, newest first"`
}

// ListEpisodesOutput wraps the list response for Huma.
type ListEpisodesOutput struct {
	Body ListEpisodesResponse
}

// GetEpisodeInput identifies an episode by ID.
type GetEpisodeInput struct {
	ID string `path:"id" doc:"Episode ID"`
}

// DeleteEpisodeInput identifies an episode to delete.
type DeleteEpisodeInput struct {
	ID string `path:"id" doc:"Episode ID"`
}

// DeleteEpisodeOutput is the empty delete response.
type DeleteEpisodeOutput struct{}

// SegmentResponse is the API representation of a transcript segment.
type SegmentResponse struct {
	Start   float64 `json:"start" doc:"Segment start in seconds"`
	End     float64 `json:"end" doc:"Segment end in seconds"`
	Text    string  `json:"text" doc:"Segment text"`
	Speaker string  `json:"speaker,omitempty" doc:"Speaker label, when known"`
}

// ChapterResponse is the API representation of a chapter.
type ChapterResponse struct {
	ID          int               `json:"id" doc:"Chapter ID, dense from 0"`
	Start       float64           `json:"start" doc:"Chapter start in seconds"`
	End         float64           `json:"end" doc:"Chapter end in seconds"`
	DurationSec float64           `json:"duration_seconds" doc:"Chapter length in seconds"`
	Summary     string            `json:"summary,omitempty" doc:"Chapter summary"`
	Keywords    []string          `json:"keywords" doc:"Chapter keywords"`
	Segments    []SegmentResponse `json:"segments" doc:"Transcript segments in the chapter"`
}

// ListChaptersInput identifies an episode whose chapters to list.
type ListChaptersInput struct {
	ID string `path:"id" doc:"Episode ID"`
}

// ListChaptersResponse contains the chapters of one episode.
type ListChaptersResponse struct {
	EpisodeID string            `json:"episode_id" doc:"Episode ID"`
	Status    string            `json:"status" doc:"Episode processing status"`
	Chapters  []ChapterResponse `json:"chapters" doc:"Chapters in playback order"`
}

// ListChaptersOutput wraps the chapter list for Huma.
type ListChaptersOutput struct {
	Body ListChaptersResponse
}

// RechapterRequest contains the re-chaptering parameters.
type RechapterRequest struct {
	Threshold *float64 `json:"threshold" validate:"required,gte=-1,lte=1" doc:"Cosine similarity cutoff in [-1, 1]. Higher values produce more, shorter chapters."`
}

// RechapterInput wraps the re-chapter request for Huma.
type RechapterInput struct {
	ID   string `path:"id" doc:"Episode ID"`
	Body RechapterRequest
}

// === Handlers ===

func (s *Server) handleCreateEpisode(ctx context.Context, input *CreateEpisodeInput) (*EpisodeOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	now := time.Now()
	episode := &domain.Episode{
		ID:        id.MustGenerate("ep"),
		Title:     input.Body.Title,
		Audio:     domain.AudioInfo{Path: input.Body.AudioPath},
		Status:    domain.EpisodeStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateEpisode(ctx, episode); err != nil {
		return nil, err
	}

	s.logger.Info("episode created", "episode_id", episode.ID, "title", episode.Title)

	// Processing runs in the background; poll the episode status to follow it.
	go func() {
		if err := s.pipeline.ProcessEpisode(context.Background(), episode.ID); err != nil {
			s.logger.Error("episode processing failed", "episode_id", episode.ID, "error", err)
		}
	}()

	return &EpisodeOutput{Body: mapEpisodeResponse(episode)}, nil
}

func (s *Server) handleListEpisodes(ctx context.Context, input *ListEpisodesInput) (*ListEpisodesOutput, error) {
	var (
		episodes []*domain.Episode
		err      error
	)
	if input.Status != "" {
		episodes, err = s.store.ListEpisodesByStatus(ctx, domain.EpisodeStatus(input.Status))
	} else {
		episodes, err = s.store.ListEpisodes(ctx)
	}
	if err != nil {
		return nil, err
	}

	resp := ListEpisodesResponse{Episodes: make([]EpisodeResponse, 0, len(episodes))}
	for _, e := range episodes {
		resp.Episodes = append(resp.Episodes, mapEpisodeResponse(e))
	}
	return &ListEpisodesOutput{Body: resp}, nil
}

func (s *Server) handleGetEpisode(ctx context.Context, input *GetEpisodeInput) (*EpisodeOutput, error) {
	episode, err := s.store.GetEpisode(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EpisodeOutput{Body: mapEpisodeResponse(episode)}, nil
}

func (s *Server) handleDeleteEpisode(ctx context.Context, input *DeleteEpisodeInput) (*DeleteEpisodeOutput, error) {
	if err := s.store.DeleteEpisode(ctx, input.ID); err != nil {
		return nil, err
	}

	if err := s.index.DeleteEpisode(input.ID); err != nil {
		// The episode record is gone; stale index entries are harmless
		// and disappear on the next rebuild.
		s.logger.Error("failed to remove episode from search index", "episode_id", input.ID, "error", err)
	}

	return &DeleteEpisodeOutput{}, nil
}

func (s *Server) handleListChapters(ctx context.Context, input *ListChaptersInput) (*ListChaptersOutput, error) {
	episode, err := s.store.GetEpisode(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := ListChaptersResponse{
		EpisodeID: episode.ID,
		Status:    string(episode.Status),
		Chapters:  make([]ChapterResponse, 0, len(episode.Chapters)),
	}
	for i := range episode.Chapters {
		resp.Chapters = append(resp.Chapters, mapChapterResponse(&episode.Chapters[i]))
	}
	return &ListChaptersOutput{Body: resp}, nil
}

func (s *Server) handleRechapterEpisode(ctx context.Context, input *RechapterInput) (*ListChaptersOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	episode, err := s.pipeline.Rechapter(ctx, input.ID, *input.Body.Threshold)
	if err != nil {
		return nil, err
	}

	s.logger.Info("episode rechaptered",
		"episode_id", episode.ID,
		"threshold", *input.Body.Threshold,
		"chapters", len(episode.Chapters),
	)

	resp := ListChaptersResponse{
		EpisodeID: episode.ID,
		Status:    string(episode.Status),
		Chapters:  make([]ChapterResponse, 0, len(episode.Chapters)),
	}
	for i := range episode.Chapters {
		resp.Chapters = append(resp.Chapters, mapChapterResponse(&episode.Chapters[i]))
	}
	return &ListChaptersOutput{Body: resp}, nil
}

// === Mapping ===

func mapEpisodeResponse(e *domain.Episode) EpisodeResponse {
	return EpisodeResponse{
		ID:             e.ID,
		Title:          e.Title,
		Status:         string(e.Status),
		Error:          e.Error,
		AudioPath:      e.Audio.Path,
		DurationSec:    e.Audio.DurationSeconds,
		ChapterCount:   len(e.Chapters),
		SegmentCount:   len(e.Transcript.Segments),
		GlobalKeywords: e.GlobalKeywords,
		CreatedAt:      e.CreatedAt,
		ProcessedAt:    e.ProcessedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func mapChapterResponse(c *domain.Chapter) ChapterResponse {
	segments := make([]SegmentResponse, 0, len(c.Segments))
	for _, seg := range c.Segments {
		segments = append(segments, SegmentResponse{
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
			Speaker: seg.Speaker,
		})
	}
	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ChapterResponse{
		ID:          c.ID,
		Start:       c.Start,
		End:         c.End,
		DurationSec: c.DurationSeconds(),
		Summary:     c.Summary,
		Keywords:    keywords,
		Segments:    segments,
	}
}
