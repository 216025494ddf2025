package domain

import "strings"

// Chapter is a topically coherent, contiguous run of transcript segments.
// IDs are dense and zero-based in emission order. Summary and Keywords are
// empty until the enrichment step fills them in.
type Chapter struct {
	ID       int                 `json:"id"`
	Start    float64             `json:"start"`
	End      float64             `json:"end"`
	Summary  string              `json:"summary"`
	Keywords []string            `json:"keywords"`
	Segments []TranscriptSegment `json:"segments"`
}

// Text returns the space-joined text of the chapter's segments.
// This is what enrichment feeds to the summarizer and keyword extractor.
func (c *Chapter) Text() string {
	parts := make([]string, len(c.Segments))
	for i, s := range c.Segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// DurationSeconds returns the chapter length in seconds.
func (c *Chapter) DurationSeconds() float64 {
	return c.End - c.Start
}
