package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("ep")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(got, "ep-") {
		t.Errorf("expected prefix %q, got %q", "ep-", got)
	}
	// prefix + separator + 21-char nanoid
	if len(got) != len("ep-")+21 {
		t.Errorf("unexpected ID length %d: %q", len(got), got)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := MustGenerate("ep")
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
