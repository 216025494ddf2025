// chaptest chapters a transcript JSON file against a running embedding
// service and prints the result. Useful for tuning window length and
// similarity threshold without reprocessing audio.
package main

import (
	"context"
	"encoding/json/v2"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/embedding"
	"github.com/podscribeapp/podscribe-server/internal/segmentation"
)

func main() {
	embeddingURL := flag.String("embedding-url", "http://localhost:9001", "Embedding service base URL")
	model := flag.String("model", "all-MiniLM-L6-v2", "Embedding model")
	dim := flag.Int("dim", 384, "Embedding dimension")
	windowSeconds := flag.Float64("window-seconds", 60, "Window length in seconds")
	threshold := flag.Float64("threshold", 0.50, "Cosine similarity cutoff")
	minChapter := flag.Float64("min-chapter-seconds", 0, "Merge chapters shorter than this (0 disables)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: chaptest [flags] <transcript.json>")
	}
	path := flag.Arg(0)

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open transcript: %v", err)
	}
	defer file.Close()

	var transcript domain.Transcript
	if err := json.UnmarshalRead(file, &transcript); err != nil {
		log.Fatalf("Failed to parse transcript: %v", err)
	}

	fmt.Printf("Transcript: %s (%d segments)\n\n", path, len(transcript.Segments))

	windows, err := segmentation.Window(transcript.Segments, *windowSeconds)
	if err != nil {
		log.Fatalf("Windowing failed: %v", err)
	}
	fmt.Printf("Windows: %d (%.0fs each)\n", len(windows), *windowSeconds)
	if len(windows) == 0 {
		return
	}

	texts := make([]string, len(windows))
	for i, w := range windows {
		texts[i] = w.Text
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	embedder := embedding.NewClient(*embeddingURL, *model, *dim, logger)

	embeddings, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		log.Fatalf("Embedding failed: %v", err)
	}

	boundaries, err := segmentation.DetectBoundaries(windows, embeddings, *threshold)
	if err != nil {
		log.Fatalf("Boundary detection failed: %v", err)
	}
	fmt.Printf("Boundaries at windows %v (threshold %.2f)\n\n", boundaries, *threshold)

	chapters, err := segmentation.Assemble(windows, boundaries)
	if err != nil {
		log.Fatalf("Chapter assembly failed: %v", err)
	}
	if *minChapter > 0 {
		chapters = segmentation.MergeShort(chapters, *minChapter)
	}

	fmt.Printf("Chapters: %d\n", len(chapters))
	for _, ch := range chapters {
		preview := ch.Text()
		if len(preview) > 80 {
			preview = preview[:80] + "..."
		}
		fmt.Printf("  [%d] %.1f - %.1f sec (%d segments)\n      %s\n",
			ch.ID, ch.Start, ch.End, len(ch.Segments), preview)
	}
}
