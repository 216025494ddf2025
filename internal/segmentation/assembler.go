package segmentation

import (
	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/errors"
)

// Assemble merges windows into chapters at the given boundary indices.
//
// Boundaries must be sorted ascending, unique, and within
// [0, len(windows)); an implicit final boundary sits at len(windows).
// Chapter start/end come from the first and last segment of the merged
// segment list, not from the window bounds, because a window's nominal end
// can undershoot its last segment. Chapters with no segments are dropped
// without consuming an id; ids are dense from 0 in emission order.
//
// Summary and keywords are left empty for the enrichment step.
func Assemble(windows []domain.Window, boundaries []int) ([]domain.Chapter, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	for _, b := range boundaries {
		if b < 0 || b >= len(windows) {
			return nil, errors.OutOfRangef("boundary index %d outside [0, %d)", b, len(windows))
		}
	}

	var chapters []domain.Chapter
	chapterID := 0

	for idx, startIdx := range boundaries {
		endIdx := len(windows)
		if idx+1 < len(boundaries) {
			endIdx = boundaries[idx+1]
		}

		var segments []domain.TranscriptSegment
		for _, w := range windows[startIdx:endIdx] {
			segments = append(segments, w.Segments...)
		}
		if len(segments) == 0 {
			continue
		}

		chapters = append(chapters, domain.Chapter{
			ID:       chapterID,
			Start:    segments[0].Start,
			End:      segments[len(segments)-1].End,
			Summary:  "",
			Keywords: []string{},
			Segments: segments,
		})
		chapterID++
	}

	return chapters, nil
}
