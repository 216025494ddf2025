// Package di provides dependency injection configuration for the Podscribe server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/podscribeapp/podscribe-server/internal/config"
	"github.com/podscribeapp/podscribe-server/internal/di/providers"
	"github.com/podscribeapp/podscribe-server/internal/logger"
	"github.com/podscribeapp/podscribe-server/internal/processor"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Collaborator clients
	do.Provide(injector, providers.ProvideTranscriber)
	do.Provide(injector, providers.ProvideEmbedder)
	do.Provide(injector, providers.ProvideSummarizer)
	do.Provide(injector, providers.ProvideKeywordExtractor)

	// Pipeline
	do.Provide(injector, providers.ProvidePipeline)

	// Workers
	do.Provide(injector, providers.ProvideIngestWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*processor.Pipeline](injector)
	_ = do.MustInvoke[*providers.IngestWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Reindex ready episodes if the segment index was rebuilt
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
