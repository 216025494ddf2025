package enrich

import (
	"context"
	"log/slog"
)

// FallbackSummarizer tries a primary summarizer and falls back to a local
// one when the primary errors or returns an empty summary. Paired with
// ExtractiveSummarizer it never fails outward.
type FallbackSummarizer struct {
	Primary  Summarizer
	Fallback Summarizer
	Logger   *slog.Logger
}

func (f *FallbackSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := f.Primary.Summarize(ctx, text)
	if err == nil && summary != "" {
		return summary, nil
	}
	if err != nil {
		f.Logger.Warn("primary summarizer failed, using fallback", "error", err)
	}
	return f.Fallback.Summarize(ctx, text)
}

// FallbackKeywordExtractor mirrors FallbackSummarizer for keywords.
type FallbackKeywordExtractor struct {
	Primary  KeywordExtractor
	Fallback KeywordExtractor
	Logger   *slog.Logger
}

func (f *FallbackKeywordExtractor) Keywords(ctx context.Context, text string, maxKeywords int) ([]string, error) {
	keywords, err := f.Primary.Keywords(ctx, text, maxKeywords)
	if err == nil && len(keywords) > 0 {
		return keywords, nil
	}
	if err != nil {
		f.Logger.Warn("primary keyword extractor failed, using fallback", "error", err)
	}
	return f.Fallback.Keywords(ctx, text, maxKeywords)
}
