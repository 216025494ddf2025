package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	apperrors "github.com/podscribeapp/podscribe-server/internal/errors"
)

func TestCreateEpisode_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/episodes", map[string]any{
		"title":      "My Episode",
		"audio_path": "/audio/my-episode.mp3",
	})

	require.Equal(t, http.StatusCreated, resp.Code)

	var episode EpisodeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &episode))

	assert.True(t, strings.HasPrefix(episode.ID, "ep-"))
	assert.Equal(t, "My Episode", episode.Title)
	assert.Equal(t, "pending", episode.Status)
	assert.Equal(t, "/audio/my-episode.mp3", episode.AudioPath)

	// The episode is persisted before the handler returns.
	stored, err := ts.store.GetEpisode(context.Background(), episode.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Episode", stored.Title)

	// Processing is kicked off in the background.
	waitFor(t, 2*time.Second, func() bool {
		ids := ts.pipeline.processedIDs()
		return len(ids) == 1 && ids[0] == episode.ID
	})
}

func TestCreateEpisode_MissingTitle(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/episodes", map[string]any{
		"audio_path": "/audio/my-episode.mp3",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, ts.pipeline.processedIDs())
}

func TestCreateEpisode_TitleTooLong(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/episodes", map[string]any{
		"title":      strings.Repeat("x", 600),
		"audio_path": "/audio/my-episode.mp3",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, ts.pipeline.processedIDs())
}

func TestGetEpisode_Success(t *testing.T) {
	ts := setupTestServer(t)
	createTestEpisode(t, ts, readyEpisode("ep-get"))

	resp := ts.api.Get("/api/v1/episodes/ep-get")

	require.Equal(t, http.StatusOK, resp.Code)

	var episode EpisodeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &episode))

	assert.Equal(t, "ep-get", episode.ID)
	assert.Equal(t, "ready", episode.Status)
	assert.Equal(t, 2, episode.ChapterCount)
	assert.Equal(t, 2, episode.SegmentCount)
	assert.Equal(t, []string{"kubernetes", "coffee"}, episode.GlobalKeywords)
	assert.NotNil(t, episode.ProcessedAt)
}

func TestGetEpisode_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/episodes/ep-missing")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListEpisodes(t *testing.T) {
	ts := setupTestServer(t)

	older := readyEpisode("ep-older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	createTestEpisode(t, ts, older)

	pending := readyEpisode("ep-newer")
	pending.Status = domain.EpisodeStatusPending
	createTestEpisode(t, ts, pending)

	resp := ts.api.Get("/api/v1/episodes")

	require.Equal(t, http.StatusOK, resp.Code)

	var list ListEpisodesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))

	require.Len(t, list.Episodes, 2)
	assert.Equal(t, "ep-newer", list.Episodes[0].ID)
	assert.Equal(t, "ep-older", list.Episodes[1].ID)
}

func TestListEpisodes_StatusFilter(t *testing.T) {
	ts := setupTestServer(t)

	createTestEpisode(t, ts, readyEpisode("ep-ready"))

	pending := readyEpisode("ep-pending")
	pending.Status = domain.EpisodeStatusPending
	createTestEpisode(t, ts, pending)

	resp := ts.api.Get("/api/v1/episodes?status=ready")

	require.Equal(t, http.StatusOK, resp.Code)

	var list ListEpisodesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))

	require.Len(t, list.Episodes, 1)
	assert.Equal(t, "ep-ready", list.Episodes[0].ID)
}

func TestDeleteEpisode(t *testing.T) {
	ts := setupTestServer(t)

	episode := readyEpisode("ep-del")
	createTestEpisode(t, ts, episode)
	require.NoError(t, ts.index.IndexEpisode(episode.ID, episode.Chapters))

	resp := ts.api.Delete("/api/v1/episodes/ep-del")

	assert.Equal(t, http.StatusNoContent, resp.Code)

	_, err := ts.store.GetEpisode(context.Background(), "ep-del")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	count, err := ts.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestListChapters_Success(t *testing.T) {
	ts := setupTestServer(t)
	createTestEpisode(t, ts, readyEpisode("ep-chapters"))

	resp := ts.api.Get("/api/v1/episodes/ep-chapters/chapters")

	require.Equal(t, http.StatusOK, resp.Code)

	var chapters ListChaptersResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &chapters))

	assert.Equal(t, "ep-chapters", chapters.EpisodeID)
	assert.Equal(t, "ready", chapters.Status)
	require.Len(t, chapters.Chapters, 2)

	first := chapters.Chapters[0]
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, float64(0), first.Start)
	assert.Equal(t, float64(60), first.End)
	assert.Equal(t, float64(60), first.DurationSec)
	assert.Equal(t, "All about kubernetes.", first.Summary)
	assert.Equal(t, []string{"kubernetes", "scheduling"}, first.Keywords)
	require.Len(t, first.Segments, 1)
	assert.Equal(t, "kubernetes scheduling deep dive", first.Segments[0].Text)
}

func TestListChapters_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/episodes/ep-missing/chapters")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRechapterEpisode_Success(t *testing.T) {
	ts := setupTestServer(t)

	var gotID string
	var gotThreshold float64
	ts.pipeline.rechapterFn = func(_ context.Context, episodeID string, threshold float64) (*domain.Episode, error) {
		gotID = episodeID
		gotThreshold = threshold

		episode := readyEpisode(episodeID)
		episode.Chapters = episode.Chapters[:1]
		return episode, nil
	}

	resp := ts.api.Post("/api/v1/episodes/ep-re/rechapter", map[string]any{
		"threshold": 0.8,
	})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ep-re", gotID)
	assert.Equal(t, 0.8, gotThreshold)

	var chapters ListChaptersResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &chapters))
	assert.Len(t, chapters.Chapters, 1)
}

func TestRechapterEpisode_MissingThreshold(t *testing.T) {
	ts := setupTestServer(t)
	ts.pipeline.rechapterFn = func(_ context.Context, episodeID string, threshold float64) (*domain.Episode, error) {
		t.Fatal("pipeline should not be called")
		return nil, nil
	}

	resp := ts.api.Post("/api/v1/episodes/ep-re/rechapter", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRechapterEpisode_ThresholdOutOfRange(t *testing.T) {
	ts := setupTestServer(t)
	ts.pipeline.rechapterFn = func(_ context.Context, episodeID string, threshold float64) (*domain.Episode, error) {
		t.Fatal("pipeline should not be called")
		return nil, nil
	}

	resp := ts.api.Post("/api/v1/episodes/ep-re/rechapter", map[string]any{
		"threshold": 1.5,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRechapterEpisode_Conflict(t *testing.T) {
	ts := setupTestServer(t)
	ts.pipeline.rechapterFn = func(_ context.Context, episodeID string, _ float64) (*domain.Episode, error) {
		return nil, apperrors.Conflictf("episode %s is currently being processed", episodeID)
	}

	resp := ts.api.Post("/api/v1/episodes/ep-busy/rechapter", map[string]any{
		"threshold": 0.5,
	})

	assert.Equal(t, http.StatusConflict, resp.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "CONFLICT", apiErr.Code)
}
