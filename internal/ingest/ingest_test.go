package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

type recordingIntake struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingIntake) IngestAudioFile(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingIntake) ingested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/drop/episode.mp3", true},
		{"/drop/episode.WAV", true},
		{"/drop/episode.m4a", true},
		{"/drop/notes.txt", false},
		{"/drop/cover.jpg", false},
		{"/drop/noext", false},
	}

	for _, tt := range tests {
		if got := IsAudioFile(tt.path); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_PicksUpNewAudioFile(t *testing.T) {
	dir := t.TempDir()
	intake := &recordingIntake{}

	w, err := NewWatcher(dir, 50*time.Millisecond, intake, testLogger())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher a moment to start.
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "episode.mp3")
	if err := os.WriteFile(path, []byte("audio data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		got := intake.ingested()
		return len(got) == 1 && got[0] == path
	})
}

func TestWatcher_IgnoresNonAudioFiles(t *testing.T) {
	dir := t.TempDir()
	intake := &recordingIntake{}

	w, err := NewWatcher(dir, 50*time.Millisecond, intake, testLogger())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := intake.ingested(); len(got) != 0 {
		t.Errorf("unexpected ingests: %v", got)
	}
}

func TestWatcher_SweepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preexisting.wav")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	intake := &recordingIntake{}
	w, err := NewWatcher(dir, 50*time.Millisecond, intake, testLogger())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	waitFor(t, 3*time.Second, func() bool {
		got := intake.ingested()
		return len(got) == 1 && got[0] == path
	})
}

type stubCreator struct {
	mu       sync.Mutex
	episodes []*domain.Episode
}

func (s *stubCreator) CreateEpisode(_ context.Context, episode *domain.Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes = append(s.episodes, episode)
	return nil
}

type stubProcessor struct {
	mu  sync.Mutex
	ids []string
}

func (s *stubProcessor) ProcessEpisode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

func (s *stubProcessor) processed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func TestEpisodeIntake_IngestAudioFile(t *testing.T) {
	creator := &stubCreator{}
	proc := &stubProcessor{}
	intake := NewEpisodeIntake(creator, proc, testLogger())

	err := intake.IngestAudioFile(context.Background(), "/drop/my-show_ep-12.mp3")
	if err != nil {
		t.Fatalf("IngestAudioFile failed: %v", err)
	}

	creator.mu.Lock()
	if len(creator.episodes) != 1 {
		creator.mu.Unlock()
		t.Fatalf("expected 1 episode, got %d", len(creator.episodes))
	}
	episode := creator.episodes[0]
	creator.mu.Unlock()

	if episode.Title != "my show ep 12" {
		t.Errorf("title = %q", episode.Title)
	}
	if episode.Status != domain.EpisodeStatusPending {
		t.Errorf("status = %s", episode.Status)
	}
	if episode.Audio.Path != "/drop/my-show_ep-12.mp3" {
		t.Errorf("audio path = %q", episode.Audio.Path)
	}

	waitFor(t, 2*time.Second, func() bool {
		ids := proc.processed()
		return len(ids) == 1 && ids[0] == episode.ID
	})
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/drop/interview-with-jo.mp3", "interview with jo"},
		{"/drop/ep_042.wav", "ep 042"},
		{"/drop/plain.m4a", "plain"},
	}

	for _, tt := range tests {
		if got := titleFromPath(tt.path); got != tt.want {
			t.Errorf("titleFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
