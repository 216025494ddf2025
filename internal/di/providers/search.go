package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/podscribeapp/podscribe-server/internal/config"
	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/logger"
	"github.com/podscribeapp/podscribe-server/internal/search"
)

// SearchIndexHandle wraps the segment index with shutdown capability.
type SearchIndexHandle struct {
	*search.SegmentIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve segment index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSegmentIndex(search.Options{
		DataPath: filepath.Join(cfg.Data.BasePath, "search"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SegmentIndex: index}, nil
}

// TriggerSearchReindexIfNeeded reindexes ready episodes when the segment
// index is empty, which happens after a mapping-version rebuild.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	episodes, err := storeHandle.ListEpisodesByStatus(ctx, domain.EpisodeStatusReady)
	if err != nil || len(episodes) == 0 {
		return
	}

	log.Info("Search index is empty but ready episodes exist, triggering reindex",
		"episode_count", len(episodes),
	)

	go func() {
		for _, episode := range episodes {
			if err := indexHandle.IndexEpisode(episode.ID, episode.Chapters); err != nil {
				log.Error("Episode reindex failed", "episode_id", episode.ID, "error", err)
			}
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}
