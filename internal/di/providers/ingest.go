package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/podscribeapp/podscribe-server/internal/config"
	"github.com/podscribeapp/podscribe-server/internal/ingest"
	"github.com/podscribeapp/podscribe-server/internal/logger"
	"github.com/podscribeapp/podscribe-server/internal/processor"
)

// IngestWatcherHandle wraps the ingest watcher with shutdown capability.
// The watcher is nil when no ingest directory is configured.
type IngestWatcherHandle struct {
	*ingest.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *IngestWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideIngestWatcher provides the audio drop-directory watcher.
// Dropped audio files become pending episodes and are processed immediately.
func ProvideIngestWatcher(i do.Injector) (*IngestWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Ingest.WatchPath == "" {
		log.Info("No ingest directory configured, file watching disabled")
		return &IngestWatcherHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	pipeline := do.MustInvoke[*processor.Pipeline](i)

	intake := ingest.NewEpisodeIntake(storeHandle.Store, pipeline, log.Logger)

	watcher, err := ingest.NewWatcher(cfg.Ingest.WatchPath, cfg.Ingest.SettleDelay, intake, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := watcher.Start(ctx); err != nil {
			log.Error("Ingest watcher stopped", "error", err)
		}
	}()

	log.Info("Ingest watcher started", "dir", cfg.Ingest.WatchPath)

	return &IngestWatcherHandle{Watcher: watcher, cancel: cancel}, nil
}
