package enrich

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/podscribeapp/podscribe-server/internal/chunker"
)

// stopwords are excluded from frequency-based keyword extraction.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "to": {}, "of": {}, "in": {}, "a": {}, "for": {},
	"is": {}, "it": {}, "on": {}, "that": {}, "this": {}, "with": {},
	"as": {}, "at": {}, "by": {}, "from": {}, "or": {}, "an": {}, "be": {},
	"are": {},
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-]+`)

// ExtractiveSummarizer summarizes by taking the first MaxSentences
// sentences of the text. It never fails, which makes it a safe fallback
// behind a remote summarizer.
type ExtractiveSummarizer struct {
	MaxSentences int
}

func (s *ExtractiveSummarizer) Summarize(_ context.Context, text string) (string, error) {
	max := s.MaxSentences
	if max <= 0 {
		max = 5
	}

	sentences := chunker.SplitSentences(strings.TrimSpace(text))
	if len(sentences) > max {
		sentences = sentences[:max]
	}
	return strings.Join(sentences, " "), nil
}

// FrequencyKeywordExtractor extracts keywords by word frequency after
// stopword and short-word filtering. Deterministic and never fails.
type FrequencyKeywordExtractor struct{}

func (FrequencyKeywordExtractor) Keywords(_ context.Context, text string, maxKeywords int) ([]string, error) {
	if maxKeywords <= 0 {
		return nil, nil
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if _, seen := counts[tok]; !seen {
			firstSeen[tok] = len(order)
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order, nil
}

// tokenize lowercases the text and keeps alphabetic words of at least
// three characters that aren't stopwords.
func tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}
