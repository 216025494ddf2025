package enrich

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/podscribeapp/podscribe-server/internal/chunker"
	"github.com/podscribeapp/podscribe-server/internal/ratelimit"
)

const (
	defaultRPS   = 1.0
	defaultBurst = 2

	defaultTimeout = 2 * time.Minute

	limiterKey = "llm"
)

// LLMClient calls a Gemini-style generateContent API for summaries and
// keywords. Long inputs are chunked with internal/chunker, processed per
// chunk, then combined in a final request.
//
// LLMClient implements both Summarizer and KeywordExtractor; wrap it in
// the Fallback decorators so an unreachable API degrades to the local
// strategies instead of failing the pipeline.
type LLMClient struct {
	http     *http.Client
	baseURL  string
	model    string
	apiKey   string
	maxChars int
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewLLMClient creates an LLM enrichment client. maxChars bounds the text
// sent in a single request.
func NewLLMClient(baseURL, model, apiKey string, maxChars int, logger *slog.Logger) *LLMClient {
	return &LLMClient{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:  baseURL,
		model:    model,
		apiKey:   apiKey,
		maxChars: maxChars,
		limiter:  ratelimit.New(defaultRPS, defaultBurst),
		logger:   logger,
	}
}

// Close releases resources held by the client.
func (c *LLMClient) Close() {
	c.limiter.Stop()
}

// Summarize produces a 4-5 sentence summary. Texts over maxChars are
// summarized per chunk, then the chunk summaries are combined.
func (c *LLMClient) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	chunks, err := chunker.Chunk(text, c.maxChars)
	if err != nil {
		return "", err
	}

	if len(chunks) == 1 {
		prompt := fmt.Sprintf(`Please provide a concise summary of the following podcast transcript segment.
Focus on the key points and main ideas discussed. Keep the summary to 4-5 sentences.

Transcript:
%s

Summary:`, text)
		return c.generate(ctx, prompt)
	}

	c.logger.Debug("summarizing long text in chunks", "chunks", len(chunks))
	chunkSummaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := fmt.Sprintf(`Please provide a brief summary of the following podcast transcript segment (part %d of %d).
Focus on the key points discussed. Keep it concise (2-3 sentences).

Transcript:
%s

Summary:`, i+1, len(chunks), chunk)
		summary, err := c.generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if summary != "" {
			chunkSummaries = append(chunkSummaries, summary)
		}
	}

	prompt := fmt.Sprintf(`Please provide a comprehensive summary combining these partial summaries of a podcast.
Create a coherent 4-5 sentence summary that captures the main ideas.

Partial summaries:
%s

Final summary:`, strings.Join(chunkSummaries, " "))
	return c.generate(ctx, prompt)
}

// Keywords extracts up to maxKeywords lowercase keywords as a
// comma-separated list from the model.
func (c *LLMClient) Keywords(ctx context.Context, text string, maxKeywords int) ([]string, error) {
	if strings.TrimSpace(text) == "" || maxKeywords <= 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	chunks, err := chunker.Chunk(text, c.maxChars)
	if err != nil {
		return nil, err
	}

	var prompt string
	if len(chunks) == 1 {
		prompt = fmt.Sprintf(`Analyze the following podcast transcript and extract the %d most important keywords or key phrases.
These should be the main topics, concepts, or themes discussed.
Return ONLY the keywords as a comma-separated list, nothing else.

Transcript:
%s

Keywords:`, maxKeywords, text)
	} else {
		c.logger.Debug("extracting keywords from long text in chunks", "chunks", len(chunks))
		var collected []string
		for _, chunk := range chunks {
			chunkPrompt := fmt.Sprintf(`Analyze this podcast transcript segment and extract the 5-6 most important keywords or key phrases.
Return ONLY the keywords as a comma-separated list.

Transcript:
%s

Keywords:`, chunk)
			raw, err := c.generate(ctx, chunkPrompt)
			if err != nil {
				return nil, err
			}
			collected = append(collected, parseKeywordList(raw, 0)...)
		}

		prompt = fmt.Sprintf(`From this list of keywords extracted from different parts of a podcast, select the %d most important and representative keywords.
Return ONLY the keywords as a comma-separated list.

All keywords:
%s

Final %d keywords:`, maxKeywords, strings.Join(collected, ", "), maxKeywords)
	}

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseKeywordList(raw, maxKeywords), nil
}

// parseKeywordList splits a comma-separated model response into cleaned
// lowercase keywords. max <= 0 means no cap.
func parseKeywordList(raw string, max int) []string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if len(kw) > 1 {
			keywords = append(keywords, kw)
		}
	}
	if max > 0 && len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// generate sends one generateContent request and returns the trimmed text
// of the first candidate.
func (c *LLMClient) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: status %d: %s", ErrBadRequest, resp.StatusCode, string(raw))
	default:
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
