package transcribe

import (
	"testing"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fillers", "welcome to the show", "welcome to the show"},
		{"leading filler", "uh hello there", "hello there"},
		{"multi-word filler", "you know we should start", "we should start"},
		{"case insensitive", "Um right UM okay", "right okay"},
		{"whitespace collapsed", "so   many    spaces", "so many spaces"},
		{"only fillers", "um uh umm", ""},
		{"filler inside word untouched", "umbrella column", "umbrella column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_DropsEmptySegments(t *testing.T) {
	confidence := -0.3
	transcript := domain.Transcript{
		Segments: []domain.TranscriptSegment{
			{Start: 0, End: 5, Text: "welcome back", Confidence: &confidence},
			{Start: 5, End: 7, Text: "um uh"},
			{Start: 7, End: 12, Text: "let's get started"},
		},
	}

	got := Clean(transcript)
	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got.Segments))
	}
	first := got.Segments[0]
	if first.Start != 0 || first.End != 5 || first.Text != "welcome back" {
		t.Errorf("unexpected first segment: %+v", first)
	}
	if first.Confidence == nil || *first.Confidence != confidence {
		t.Error("confidence not preserved")
	}
	if got.Segments[1].Start != 7 {
		t.Errorf("unexpected second segment: %+v", got.Segments[1])
	}
}

func TestClean_Empty(t *testing.T) {
	got := Clean(domain.Transcript{})
	if len(got.Segments) != 0 {
		t.Errorf("expected no segments, got %d", len(got.Segments))
	}
}
