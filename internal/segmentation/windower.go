// Package segmentation partitions a timestamped transcript into topically
// coherent chapters: fixed-duration windowing, adjacent-window similarity
// scoring, threshold-based boundary detection, and chapter assembly.
package segmentation

import (
	"strings"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/errors"
)

// Window groups ordered transcript segments into fixed-duration time windows.
//
// Membership is decided on segment start times only: a segment that starts
// inside a window but ends after the window's nominal end is still fully
// retained in that window. The output windows are a strict partition of the
// input segments, in original order.
func Window(segments []domain.TranscriptSegment, windowSeconds float64) ([]domain.Window, error) {
	if windowSeconds <= 0 {
		return nil, errors.InvalidConfigf("window seconds must be positive, got %v", windowSeconds)
	}
	if len(segments) == 0 {
		return nil, nil
	}

	var windows []domain.Window
	current := make([]domain.TranscriptSegment, 0, 8)
	currentStart := segments[0].Start
	currentEnd := currentStart + windowSeconds

	flush := func() {
		if len(current) == 0 {
			return
		}
		windows = append(windows, domain.Window{
			Start:    currentStart,
			End:      currentEnd,
			Text:     joinSegmentText(current),
			Segments: current,
		})
	}

	for _, seg := range segments {
		if seg.Start < currentEnd {
			current = append(current, seg)
			continue
		}
		flush()
		current = []domain.TranscriptSegment{seg}
		currentStart = seg.Start
		currentEnd = currentStart + windowSeconds
	}
	flush()

	return windows, nil
}

func joinSegmentText(segments []domain.TranscriptSegment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
