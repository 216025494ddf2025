// Package search provides full-text search over transcript segments using
// Bleve. Segments are indexed per episode with their chapter assignment and
// timestamps so results can deep-link into playback.
package search

import (
	"fmt"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

// SegmentDocument is the indexed representation of one transcript segment.
type SegmentDocument struct {
	ID        string  `json:"id"` // "<episodeID>:<segmentIdx>"
	EpisodeID string  `json:"episode_id"`
	ChapterID int     `json:"chapter_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
}

// DocumentID builds the index key for a segment of an episode.
func DocumentID(episodeID string, segmentIdx int) string {
	return fmt.Sprintf("%s:%d", episodeID, segmentIdx)
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SegmentDocument) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":         d.ID,
		"episode_id": d.EpisodeID,
		"chapter_id": d.ChapterID,
		"start":      d.Start,
		"end":        d.End,
		"text":       d.Text,
	}
}

// EpisodeToDocuments flattens an episode's chapters into segment documents.
// Segment indexes run across the whole episode in chapter order.
func EpisodeToDocuments(episodeID string, chapters []domain.Chapter) []*SegmentDocument {
	var docs []*SegmentDocument
	segmentIdx := 0
	for _, ch := range chapters {
		for _, seg := range ch.Segments {
			docs = append(docs, &SegmentDocument{
				ID:        DocumentID(episodeID, segmentIdx),
				EpisodeID: episodeID,
				ChapterID: ch.ID,
				Start:     seg.Start,
				End:       seg.End,
				Text:      seg.Text,
			})
			segmentIdx++
		}
	}
	return docs
}
