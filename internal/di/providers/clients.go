package providers

import (
	"github.com/samber/do/v2"

	"github.com/podscribeapp/podscribe-server/internal/config"
	"github.com/podscribeapp/podscribe-server/internal/embedding"
	"github.com/podscribeapp/podscribe-server/internal/enrich"
	"github.com/podscribeapp/podscribe-server/internal/logger"
	"github.com/podscribeapp/podscribe-server/internal/transcribe"
)

// ProvideTranscriber provides the transcription service client.
func ProvideTranscriber(i do.Injector) (transcribe.Transcriber, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := transcribe.NewClient(
		cfg.Transcription.BaseURL,
		cfg.Transcription.Model,
		cfg.Transcription.Timeout,
		log.Logger,
	)

	log.Info("Transcription client configured",
		"base_url", cfg.Transcription.BaseURL,
		"model", cfg.Transcription.Model,
	)

	return client, nil
}

// ProvideEmbedder provides the embedding service client.
func ProvideEmbedder(i do.Injector) (embedding.Embedder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := embedding.NewClient(
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.Dim,
		log.Logger,
	)

	log.Info("Embedding client configured",
		"base_url", cfg.Embedding.BaseURL,
		"model", cfg.Embedding.Model,
		"dim", cfg.Embedding.Dim,
	)

	return client, nil
}

// ProvideSummarizer provides the chapter summarizer: an LLM client with a
// local extractive fallback, so enrichment degrades instead of failing when
// the LLM is unreachable or unconfigured.
func ProvideSummarizer(i do.Injector) (enrich.Summarizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	llm := enrich.NewLLMClient(
		cfg.Enrichment.BaseURL,
		cfg.Enrichment.Model,
		cfg.Enrichment.APIKey,
		cfg.Enrichment.MaxChars,
		log.Logger,
	)

	if cfg.Enrichment.APIKey == "" {
		log.Warn("No enrichment API key configured, chapter summaries will use the local fallback")
	}

	return &enrich.FallbackSummarizer{
		Primary:  llm,
		Fallback: &enrich.ExtractiveSummarizer{MaxSentences: cfg.Enrichment.SummarySentences},
		Logger:   log.Logger,
	}, nil
}

// ProvideKeywordExtractor provides the chapter keyword extractor with the
// same LLM-then-local fallback arrangement as the summarizer.
func ProvideKeywordExtractor(i do.Injector) (enrich.KeywordExtractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	llm := enrich.NewLLMClient(
		cfg.Enrichment.BaseURL,
		cfg.Enrichment.Model,
		cfg.Enrichment.APIKey,
		cfg.Enrichment.MaxChars,
		log.Logger,
	)

	return &enrich.FallbackKeywordExtractor{
		Primary:  llm,
		Fallback: &enrich.FrequencyKeywordExtractor{},
		Logger:   log.Logger,
	}, nil
}
