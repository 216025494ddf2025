package transcribe

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/ratelimit"
)

const (
	// Transcription runs are long and sequential; keep outbound pressure low.
	defaultRPS   = 0.5
	defaultBurst = 1

	defaultTimeout = 5 * time.Minute

	limiterKey = "transcription"
)

// Client is a rate-limited client for a Whisper-compatible transcription
// server exposing POST /v1/audio/transcriptions with verbose JSON output.
type Client struct {
	http    *http.Client
	baseURL string
	model   string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewClient creates a transcription client. A zero timeout uses the default.
func NewClient(baseURL, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		model:   model,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// verboseSegment mirrors the verbose_json segment shape of Whisper servers.
type verboseSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
}

type verboseResponse struct {
	Text     string           `json:"text"`
	Segments []verboseSegment `json:"segments"`
}

// Transcribe uploads the audio file and converts the server's verbose
// segment list into a Transcript. Segment text is trimmed but not cleaned;
// callers run Clean separately.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return domain.Transcript{}, fmt.Errorf("rate limit wait: %w", err)
	}

	body, contentType, err := c.buildRequestBody(audioPath)
	if err != nil {
		return domain.Transcript{}, err
	}

	url := c.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("transcription request",
		"audio", audioPath,
		"model", c.model,
	)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.Transcript{}, ErrRateLimited
	case resp.StatusCode >= 500:
		return domain.Transcript{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return domain.Transcript{}, fmt.Errorf("%w: status %d: %s", ErrBadRequest, resp.StatusCode, string(raw))
	default:
		return domain.Transcript{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed verboseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.Transcript{}, fmt.Errorf("parse response: %w", err)
	}

	transcript := toTranscript(parsed)
	c.logger.Debug("transcription complete",
		"audio", audioPath,
		"segments", len(transcript.Segments),
		"duration", time.Since(start),
	)
	return transcript, nil
}

// buildRequestBody assembles the multipart form with the audio file,
// model name, and verbose_json response format.
func (c *Client) buildRequestBody(audioPath string) (io.Reader, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAudioFile, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAudioFile, err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", fmt.Errorf("write format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

func toTranscript(resp verboseResponse) domain.Transcript {
	segments := make([]domain.TranscriptSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		confidence := s.AvgLogprob
		segments = append(segments, domain.TranscriptSegment{
			Start:      s.Start,
			End:        s.End,
			Text:       strings.TrimSpace(s.Text),
			Confidence: &confidence,
		})
	}
	return domain.Transcript{Segments: segments}
}
