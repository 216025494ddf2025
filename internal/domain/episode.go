package domain

import "time"

// EpisodeStatus represents the state of an episode in the processing pipeline.
type EpisodeStatus string

const (
	EpisodeStatusPending    EpisodeStatus = "pending"
	EpisodeStatusProcessing EpisodeStatus = "processing"
	EpisodeStatusReady      EpisodeStatus = "ready"
	EpisodeStatusFailed     EpisodeStatus = "failed"
)

// AudioInfo describes the source audio as reported by the audio conversion
// service. The server never decodes audio itself.
type AudioInfo struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	SampleRate      int     `json:"sample_rate,omitempty"`
}

// Episode is a podcast episode and everything derived from it: transcript,
// chapters, and global keywords. Episodes move through the status lifecycle
// pending -> processing -> ready (or failed).
type Episode struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	Audio AudioInfo `json:"audio"`

	Status EpisodeStatus `json:"status"`
	Error  string        `json:"error,omitempty"`

	Transcript     Transcript `json:"transcript"`
	Chapters       []Chapter  `json:"chapters"`
	GlobalKeywords []string   `json:"global_keywords,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MarkProcessing transitions the episode to the processing state.
func (e *Episode) MarkProcessing() {
	e.Status = EpisodeStatusProcessing
	e.Error = ""
	e.UpdatedAt = time.Now()
}

// MarkReady transitions the episode to the ready state.
func (e *Episode) MarkReady() {
	now := time.Now()
	e.Status = EpisodeStatusReady
	e.Error = ""
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed transitions the episode to the failed state with a reason.
func (e *Episode) MarkFailed(reason string) {
	e.Status = EpisodeStatusFailed
	e.Error = reason
	e.UpdatedAt = time.Now()
}
