package enrich

import (
	"context"
	"reflect"
	"testing"
)

func TestExtractiveSummarizer(t *testing.T) {
	s := &ExtractiveSummarizer{MaxSentences: 2}

	got, err := s.Summarize(context.Background(), "One. Two. Three. Four.")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "One. Two." {
		t.Errorf("summary = %q, want %q", got, "One. Two.")
	}
}

func TestExtractiveSummarizer_ShortText(t *testing.T) {
	s := &ExtractiveSummarizer{MaxSentences: 5}

	got, err := s.Summarize(context.Background(), "Just one sentence.")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "Just one sentence." {
		t.Errorf("summary = %q", got)
	}
}

func TestExtractiveSummarizer_Empty(t *testing.T) {
	s := &ExtractiveSummarizer{MaxSentences: 5}

	got, err := s.Summarize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "" {
		t.Errorf("summary = %q, want empty", got)
	}
}

func TestFrequencyKeywordExtractor(t *testing.T) {
	e := FrequencyKeywordExtractor{}
	text := "Kubernetes kubernetes cluster cluster cluster the and to deployment"

	got, err := e.Keywords(context.Background(), text, 2)
	if err != nil {
		t.Fatalf("Keywords failed: %v", err)
	}
	want := []string{"cluster", "kubernetes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keywords = %v, want %v", got, want)
	}
}

func TestFrequencyKeywordExtractor_FiltersShortAndStopwords(t *testing.T) {
	e := FrequencyKeywordExtractor{}

	got, err := e.Keywords(context.Background(), "go is the at on it", 8)
	if err != nil {
		t.Fatalf("Keywords failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
}

func TestFrequencyKeywordExtractor_TieBreaksOnFirstSeen(t *testing.T) {
	e := FrequencyKeywordExtractor{}

	got, err := e.Keywords(context.Background(), "alpha beta alpha beta gamma", 3)
	if err != nil {
		t.Fatalf("Keywords failed: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keywords = %v, want %v", got, want)
	}
}

func TestGlobalKeywords(t *testing.T) {
	lists := [][]string{
		{"go", "testing", "concurrency"},
		{"go", "channels"},
		{"testing", "go"},
	}

	got := GlobalKeywords(lists, 2)
	want := []string{"go", "testing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GlobalKeywords = %v, want %v", got, want)
	}
}

func TestGlobalKeywords_Empty(t *testing.T) {
	if got := GlobalKeywords(nil, 5); len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
	if got := GlobalKeywords([][]string{{"a"}}, 0); len(got) != 0 {
		t.Errorf("topN=0 should yield nothing, got %v", got)
	}
}
