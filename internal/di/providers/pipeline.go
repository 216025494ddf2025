package providers

import (
	"github.com/samber/do/v2"

	"github.com/podscribeapp/podscribe-server/internal/config"
	"github.com/podscribeapp/podscribe-server/internal/embedding"
	"github.com/podscribeapp/podscribe-server/internal/enrich"
	"github.com/podscribeapp/podscribe-server/internal/logger"
	"github.com/podscribeapp/podscribe-server/internal/processor"
	"github.com/podscribeapp/podscribe-server/internal/transcribe"
)

// ProvidePipeline provides the episode processing pipeline.
func ProvidePipeline(i do.Injector) (*processor.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	transcriber := do.MustInvoke[transcribe.Transcriber](i)
	embedder := do.MustInvoke[embedding.Embedder](i)
	summarizer := do.MustInvoke[enrich.Summarizer](i)
	keywords := do.MustInvoke[enrich.KeywordExtractor](i)

	pipeline := processor.NewPipeline(
		storeHandle.Store,
		indexHandle.SegmentIndex,
		transcriber,
		embedder,
		summarizer,
		keywords,
		processor.Options{
			WindowSeconds:       cfg.Segmentation.WindowSeconds,
			SimilarityThreshold: cfg.Segmentation.SimilarityThreshold,
			MinChapterSeconds:   cfg.Segmentation.MinChapterSeconds,
			MergeShortChapters:  cfg.Segmentation.MergeShortChapters,
			MaxKeywords:         cfg.Enrichment.MaxKeywords,
			GlobalKeywordsTopN:  cfg.Enrichment.GlobalKeywordsTopN,
		},
		log.Logger,
	)

	log.Info("Processing pipeline ready",
		"window_seconds", cfg.Segmentation.WindowSeconds,
		"similarity_threshold", cfg.Segmentation.SimilarityThreshold,
		"merge_short_chapters", cfg.Segmentation.MergeShortChapters,
	)

	return pipeline, nil
}
