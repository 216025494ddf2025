// Package chunker splits arbitrary text into size-bounded chunks for
// submission to external services with input limits.
package chunker

import (
	"strings"
	"unicode"

	"github.com/podscribeapp/podscribe-server/internal/errors"
)

// Chunk splits text into pieces of at most maxChars characters.
//
// Sentence boundaries are preferred: text is split after '.', '!' or '?'
// followed by whitespace, and sentences are greedily packed into chunks
// joined by single spaces. A sentence longer than maxChars is split on
// whitespace and its words packed the same way. A single word longer than
// maxChars is emitted verbatim as its own oversized chunk, never truncated.
//
// Output is deterministic. Empty input yields no chunks; callers must treat
// zero chunks as "nothing to process".
func Chunk(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, errors.InvalidConfigf("max chars must be positive, got %d", maxChars)
	}
	if text == "" {
		return nil, nil
	}
	if len(text) <= maxChars {
		return []string{text}, nil
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	// append adds a token to the running chunk with a single-space joiner.
	appendToken := func(token string) {
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(token)
	}

	fits := func(token string) bool {
		candidate := current.Len() + len(token)
		if current.Len() > 0 {
			candidate++ // joiner space
		}
		return candidate <= maxChars
	}

	for _, sentence := range SplitSentences(text) {
		if len(sentence) > maxChars {
			// Sentence alone exceeds the budget: pack word by word.
			for _, word := range strings.Fields(sentence) {
				if fits(word) {
					appendToken(word)
					continue
				}
				flush()
				// A lone word longer than maxChars becomes an oversized
				// singleton chunk.
				current.WriteString(word)
			}
			continue
		}
		if fits(sentence) {
			appendToken(sentence)
			continue
		}
		flush()
		current.WriteString(sentence)
	}

	flush()
	return chunks, nil
}

// SplitSentences splits text after '.', '!' or '?' followed by whitespace.
// The terminating punctuation stays with its sentence; the whitespace at
// the split point is consumed.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if !unicode.IsSpace(runes[i+1]) {
				continue
			}
			sentences = append(sentences, string(runes[start:i+1]))
			// Skip the whitespace run following the boundary.
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}
