// Package transcribe turns audio files into transcripts using a
// Whisper-compatible transcription server, and cleans the resulting
// segment text.
package transcribe

import (
	"context"
	"errors"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

// Transcriber produces a transcript for an audio file on disk.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error)
}

// Sentinel errors for transcription operations.
var (
	ErrUnavailable = errors.New("transcribe: server unavailable")
	ErrRateLimited = errors.New("transcribe: rate limited by server")
	ErrBadRequest  = errors.New("transcribe: bad request")
	ErrAudioFile   = errors.New("transcribe: cannot read audio file")
)
