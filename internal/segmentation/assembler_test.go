package segmentation

import (
	"reflect"
	"testing"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

func TestAssemble_Empty(t *testing.T) {
	got, err := Assemble(nil, nil)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no chapters, got %d", len(got))
	}
}

func TestAssemble_OutOfRangeBoundary(t *testing.T) {
	windows := windowsOfSize(3)
	for _, boundaries := range [][]int{{-1}, {0, 3}, {0, 7}} {
		if _, err := Assemble(windows, boundaries); err == nil {
			t.Errorf("expected error for boundaries %v", boundaries)
		}
	}
}

func TestAssemble_SingleChapter(t *testing.T) {
	windows := []domain.Window{
		{
			Start: 0, End: 60, Text: "hi",
			Segments: []domain.TranscriptSegment{seg(0, 5, "hi")},
		},
	}

	got, err := Assemble(windows, []int{0})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(got))
	}
	ch := got[0]
	if ch.ID != 0 || ch.Start != 0 || ch.End != 5 {
		t.Errorf("unexpected chapter: id=%d start=%v end=%v", ch.ID, ch.Start, ch.End)
	}
	if ch.Summary != "" || ch.Keywords == nil || len(ch.Keywords) != 0 {
		t.Errorf("expected empty summary and keywords, got %q %v", ch.Summary, ch.Keywords)
	}
}

func TestAssemble_MergesWindowsBetweenBoundaries(t *testing.T) {
	windows := []domain.Window{
		{Start: 0, End: 60, Text: "a", Segments: []domain.TranscriptSegment{seg(0, 10, "a")}},
		{Start: 60, End: 120, Text: "b", Segments: []domain.TranscriptSegment{seg(70, 80, "b")}},
		{Start: 120, End: 180, Text: "c", Segments: []domain.TranscriptSegment{seg(130, 175, "c")}},
	}

	got, err := Assemble(windows, []int{0, 2})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}

	first := got[0]
	if first.ID != 0 || first.Start != 0 || first.End != 80 || len(first.Segments) != 2 {
		t.Errorf("unexpected first chapter: %+v", first)
	}
	second := got[1]
	if second.ID != 1 || second.Start != 130 || second.End != 175 || len(second.Segments) != 1 {
		t.Errorf("unexpected second chapter: %+v", second)
	}
}

func TestAssemble_DropsEmptyChaptersWithDenseIDs(t *testing.T) {
	windows := []domain.Window{
		{Start: 0, End: 60, Text: "a", Segments: []domain.TranscriptSegment{seg(0, 10, "a")}},
		{Start: 60, End: 120}, // no segments
		{Start: 120, End: 180, Text: "c", Segments: []domain.TranscriptSegment{seg(130, 140, "c")}},
	}

	got, err := Assemble(windows, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
	if got[0].ID != 0 || got[1].ID != 1 {
		t.Errorf("ids not dense: %d, %d", got[0].ID, got[1].ID)
	}
	if got[1].Start != 130 {
		t.Errorf("second chapter start = %v, want 130", got[1].Start)
	}
}

func TestAssemble_SegmentsCoverAllWindows(t *testing.T) {
	windows := windowsOfSize(6)

	got, err := Assemble(windows, []int{0, 2, 5})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	var flattened []domain.TranscriptSegment
	for _, ch := range got {
		flattened = append(flattened, ch.Segments...)
	}
	var want []domain.TranscriptSegment
	for _, w := range windows {
		want = append(want, w.Segments...)
	}
	if !reflect.DeepEqual(flattened, want) {
		t.Errorf("chapters do not cover all window segments:\nwant %v\ngot  %v", want, flattened)
	}
}
