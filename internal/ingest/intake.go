package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/id"
)

// EpisodeCreator is the slice of the store the intake needs.
type EpisodeCreator interface {
	CreateEpisode(ctx context.Context, episode *domain.Episode) error
}

// Processor kicks off episode processing.
type Processor interface {
	ProcessEpisode(ctx context.Context, episodeID string) error
}

// EpisodeIntake creates an episode record for a dropped audio file and
// starts the pipeline for it.
type EpisodeIntake struct {
	store     EpisodeCreator
	processor Processor
	logger    *slog.Logger
}

// NewEpisodeIntake creates an EpisodeIntake.
func NewEpisodeIntake(store EpisodeCreator, processor Processor, logger *slog.Logger) *EpisodeIntake {
	return &EpisodeIntake{
		store:     store,
		processor: processor,
		logger:    logger,
	}
}

// IngestAudioFile registers the file as a pending episode and processes it
// in the background. The episode title is derived from the file name.
func (i *EpisodeIntake) IngestAudioFile(ctx context.Context, path string) error {
	now := time.Now()
	episode := &domain.Episode{
		ID:        id.MustGenerate("ep"),
		Title:     titleFromPath(path),
		Audio:     domain.AudioInfo{Path: path},
		Status:    domain.EpisodeStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := i.store.CreateEpisode(ctx, episode); err != nil {
		return err
	}

	i.logger.Info("created episode from ingested file",
		"episode_id", episode.ID,
		"title", episode.Title,
	)

	go func() {
		// Detach from the watcher's context; processing outlives the event.
		if err := i.processor.ProcessEpisode(context.Background(), episode.ID); err != nil {
			i.logger.Error("background processing failed",
				"episode_id", episode.ID,
				"error", err,
			)
		}
	}()

	return nil
}

// titleFromPath turns "my-episode_01.mp3" into "my episode 01".
func titleFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}
