package transcribe

import (
	"regexp"
	"strings"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

// fillerWords are removed from segment text before segmentation. Multi-word
// entries must come before their single-word prefixes so "you know" is
// stripped as a unit.
var fillerWords = []string{
	"you know", "sort of", "kind of", "umm", "um", "uh", "like",
}

var (
	fillerPattern     = buildFillerPattern()
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func buildFillerPattern() *regexp.Regexp {
	quoted := make([]string, len(fillerWords))
	for i, fw := range fillerWords {
		quoted[i] = regexp.QuoteMeta(fw)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// CleanText removes filler words and normalizes whitespace.
func CleanText(text string) string {
	t := fillerPattern.ReplaceAllString(text, " ")
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Clean applies CleanText to every segment and drops segments whose text
// becomes empty. Timing, speaker, and confidence are preserved.
func Clean(transcript domain.Transcript) domain.Transcript {
	cleaned := make([]domain.TranscriptSegment, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		text := CleanText(seg.Text)
		if text == "" {
			continue
		}
		seg.Text = text
		cleaned = append(cleaned, seg)
	}
	return domain.Transcript{Segments: cleaned}
}
