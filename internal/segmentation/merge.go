package segmentation

import "github.com/podscribeapp/podscribe-server/internal/domain"

// MergeShort is an optional post-processing pass that absorbs chapters
// shorter than minSeconds into their predecessor. The absorbed chapter's
// segments are appended to the predecessor and its end time extended; the
// predecessor keeps its own summary and keywords. The first chapter is
// never absorbed (it has no predecessor). minSeconds <= 0 disables the
// pass and returns the input unchanged.
//
// Ids are reassigned densely from 0 after merging.
func MergeShort(chapters []domain.Chapter, minSeconds float64) []domain.Chapter {
	if minSeconds <= 0 || len(chapters) == 0 {
		return chapters
	}

	merged := make([]domain.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if len(merged) > 0 && ch.DurationSeconds() < minSeconds {
			prev := &merged[len(merged)-1]
			prev.Segments = append(prev.Segments, ch.Segments...)
			prev.End = ch.End
			continue
		}
		merged = append(merged, ch)
	}

	for i := range merged {
		merged[i].ID = i
	}
	return merged
}
