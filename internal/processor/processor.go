// Package processor orchestrates the episode pipeline: transcription,
// cleaning, topic segmentation, enrichment, persistence, and indexing.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/embedding"
	"github.com/podscribeapp/podscribe-server/internal/enrich"
	apperrors "github.com/podscribeapp/podscribe-server/internal/errors"
	"github.com/podscribeapp/podscribe-server/internal/segmentation"
	"github.com/podscribeapp/podscribe-server/internal/transcribe"
)

// EpisodeStore is the slice of the store the pipeline needs.
type EpisodeStore interface {
	GetEpisode(ctx context.Context, id string) (*domain.Episode, error)
	UpdateEpisode(ctx context.Context, episode *domain.Episode) error
}

// SegmentIndexer keeps the search index in sync with processed episodes.
type SegmentIndexer interface {
	IndexEpisode(episodeID string, chapters []domain.Chapter) error
}

// Options are the segmentation and enrichment knobs of the pipeline.
type Options struct {
	WindowSeconds       float64
	SimilarityThreshold float64
	MinChapterSeconds   float64
	MergeShortChapters  bool
	MaxKeywords         int
	GlobalKeywordsTopN  int
}

// Pipeline runs episodes through the full processing flow.
//
// Key design principles:
//   - Per-episode locking with TryLock: concurrent requests for the same
//     episode are dropped, not queued
//   - Enrichment failures degrade (fallback summaries/keywords), they
//     never fail the episode
//   - The episode record is the source of truth; the search index is
//     rebuilt from it after every run
type Pipeline struct {
	store       EpisodeStore
	index       SegmentIndexer
	transcriber transcribe.Transcriber
	embedder    embedding.Embedder
	summarizer  enrich.Summarizer
	keywords    enrich.KeywordExtractor
	opts        Options
	logger      *slog.Logger

	episodeLocks *SyncMap[string, *sync.Mutex]
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	store EpisodeStore,
	index SegmentIndexer,
	transcriber transcribe.Transcriber,
	embedder embedding.Embedder,
	summarizer enrich.Summarizer,
	keywords enrich.KeywordExtractor,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		store:        store,
		index:        index,
		transcriber:  transcriber,
		embedder:     embedder,
		summarizer:   summarizer,
		keywords:     keywords,
		opts:         opts,
		logger:       logger,
		episodeLocks: NewSyncMap[string, *sync.Mutex](),
	}
}

// ProcessEpisode runs the full pipeline for an episode: transcribe, clean,
// chapter, enrich, persist, index. If the episode is already being
// processed the call returns immediately without doing anything.
func (p *Pipeline) ProcessEpisode(ctx context.Context, episodeID string) error {
	lock := p.getEpisodeLock(episodeID)
	if !lock.TryLock() {
		p.logger.Debug("episode already being processed, skipping", "episode_id", episodeID)
		return nil
	}
	defer lock.Unlock()

	episode, err := p.store.GetEpisode(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("load episode: %w", err)
	}

	episode.MarkProcessing()
	if err := p.store.UpdateEpisode(ctx, episode); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	start := time.Now()
	p.logger.Info("processing episode", "episode_id", episodeID, "audio", episode.Audio.Path)

	if err := p.run(ctx, episode); err != nil {
		episode.MarkFailed(err.Error())
		if updateErr := p.store.UpdateEpisode(ctx, episode); updateErr != nil {
			p.logger.Error("failed to persist episode failure",
				"episode_id", episodeID,
				"error", updateErr,
			)
		}
		return err
	}

	episode.MarkReady()
	if err := p.store.UpdateEpisode(ctx, episode); err != nil {
		return fmt.Errorf("persist episode: %w", err)
	}

	if err := p.index.IndexEpisode(episode.ID, episode.Chapters); err != nil {
		// The episode itself is fine; search just lags until reindex.
		p.logger.Error("failed to index episode segments",
			"episode_id", episodeID,
			"error", err,
		)
	}

	p.logger.Info("episode processed",
		"episode_id", episodeID,
		"chapters", len(episode.Chapters),
		"duration", time.Since(start),
	)
	return nil
}

// run mutates the episode in place through the pipeline stages.
func (p *Pipeline) run(ctx context.Context, episode *domain.Episode) error {
	transcript, err := p.transcriber.Transcribe(ctx, episode.Audio.Path)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	episode.Transcript = transcribe.Clean(transcript)

	chapters, err := p.chapterTranscript(ctx, episode.Transcript, p.opts.SimilarityThreshold)
	if err != nil {
		return err
	}

	p.enrichChapters(ctx, chapters)

	episode.Chapters = chapters
	episode.GlobalKeywords = globalKeywords(chapters, p.opts.GlobalKeywordsTopN)
	return nil
}

// Rechapter recomputes chapters from the stored transcript with a
// different similarity threshold, then re-enriches and reindexes. The
// audio is not transcribed again.
func (p *Pipeline) Rechapter(ctx context.Context, episodeID string, threshold float64) (*domain.Episode, error) {
	lock := p.getEpisodeLock(episodeID)
	if !lock.TryLock() {
		return nil, apperrors.Conflictf("episode %s is currently being processed", episodeID)
	}
	defer lock.Unlock()

	episode, err := p.store.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("load episode: %w", err)
	}
	if len(episode.Transcript.Segments) == 0 {
		return nil, apperrors.Validationf("episode %s has no transcript to rechapter", episodeID)
	}

	chapters, err := p.chapterTranscript(ctx, episode.Transcript, threshold)
	if err != nil {
		return nil, err
	}

	p.enrichChapters(ctx, chapters)

	episode.Chapters = chapters
	episode.GlobalKeywords = globalKeywords(chapters, p.opts.GlobalKeywordsTopN)
	episode.UpdatedAt = time.Now()

	if err := p.store.UpdateEpisode(ctx, episode); err != nil {
		return nil, fmt.Errorf("persist episode: %w", err)
	}
	if err := p.index.IndexEpisode(episode.ID, episode.Chapters); err != nil {
		p.logger.Error("failed to reindex episode segments",
			"episode_id", episodeID,
			"error", err,
		)
	}

	return episode, nil
}

// chapterTranscript runs windowing, boundary detection, and assembly.
// All window texts go to the embedder in one batched call.
func (p *Pipeline) chapterTranscript(ctx context.Context, transcript domain.Transcript, threshold float64) ([]domain.Chapter, error) {
	windows, err := segmentation.Window(transcript.Segments, p.opts.WindowSeconds)
	if err != nil {
		return nil, fmt.Errorf("window transcript: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}

	texts := make([]string, len(windows))
	for i, w := range windows {
		texts[i] = w.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed windows: %w", err)
	}

	boundaries, err := segmentation.DetectBoundaries(windows, embeddings, threshold)
	if err != nil {
		return nil, fmt.Errorf("detect boundaries: %w", err)
	}

	chapters, err := segmentation.Assemble(windows, boundaries)
	if err != nil {
		return nil, fmt.Errorf("assemble chapters: %w", err)
	}

	if p.opts.MergeShortChapters {
		chapters = segmentation.MergeShort(chapters, p.opts.MinChapterSeconds)
	}
	return chapters, nil
}

// enrichChapters fills in summaries and keywords. The enrichers are
// expected to be fallback-wrapped; an error here is logged and leaves the
// chapter with empty enrichment rather than failing the run.
func (p *Pipeline) enrichChapters(ctx context.Context, chapters []domain.Chapter) {
	for i := range chapters {
		text := chapters[i].Text()

		summary, err := p.summarizer.Summarize(ctx, text)
		if err != nil {
			p.logger.Warn("chapter summary failed", "chapter_id", chapters[i].ID, "error", err)
		} else {
			chapters[i].Summary = summary
		}

		keywords, err := p.keywords.Keywords(ctx, text, p.opts.MaxKeywords)
		if err != nil {
			p.logger.Warn("chapter keywords failed", "chapter_id", chapters[i].ID, "error", err)
		} else if len(keywords) > 0 {
			chapters[i].Keywords = keywords
		}
	}
}

func globalKeywords(chapters []domain.Chapter, topN int) []string {
	lists := make([][]string, len(chapters))
	for i, ch := range chapters {
		lists[i] = ch.Keywords
	}
	return enrich.GlobalKeywords(lists, topN)
}

// getEpisodeLock returns the mutex for an episode, creating it if needed.
func (p *Pipeline) getEpisodeLock(episodeID string) *sync.Mutex {
	lock, _ := p.episodeLocks.LoadOrStore(episodeID, &sync.Mutex{})
	return lock
}
