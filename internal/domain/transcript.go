package domain

import "strings"

// TranscriptSegment is a single timestamped span of transcribed speech.
// Segments are produced by the transcription service in start-time order
// and are never mutated after that.
type TranscriptSegment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Speaker    string   `json:"speaker,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Transcript is the full ordered transcript of one episode.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
}

// FullText returns the space-joined text of all segments.
func (t *Transcript) FullText() string {
	parts := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// Duration returns the time span covered by the transcript in seconds.
func (t *Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End - t.Segments[0].Start
}

// Window is a fixed-duration grouping of consecutive transcript segments.
// End is nominally Start + the configured window length; the last segment
// of a window may run past End because membership is decided on start
// times only.
type Window struct {
	Start    float64             `json:"start"`
	End      float64             `json:"end"`
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}
