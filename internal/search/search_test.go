package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

// setupTestIndex creates a temporary segment index for testing.
func setupTestIndex(t *testing.T) *SegmentIndex {
	t.Helper()

	index, err := NewSegmentIndex(Options{
		DataPath: t.TempDir(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
	})

	return index
}

func testChapters() []domain.Chapter {
	return []domain.Chapter{
		{
			ID:    0,
			Start: 0,
			End:   120,
			Segments: []domain.TranscriptSegment{
				{Start: 0, End: 60, Text: "welcome to the kubernetes deep dive"},
				{Start: 60, End: 120, Text: "first we cover cluster networking"},
			},
		},
		{
			ID:    1,
			Start: 120,
			End:   240,
			Segments: []domain.TranscriptSegment{
				{Start: 120, End: 180, Text: "now a word about coffee brewing"},
				{Start: 180, End: 240, Text: "grind size matters more than you think"},
			},
		},
	}
}

func TestNewSegmentIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSegmentIndex_IndexEpisode(t *testing.T) {
	index := setupTestIndex(t)

	err := index.IndexEpisode("ep-abc", testChapters())
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestSegmentIndex_IndexEpisodeReplaces(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexEpisode("ep-abc", testChapters()))
	// Reindexing the same episode must not leave stale documents around.
	require.NoError(t, index.IndexEpisode("ep-abc", testChapters()[:1]))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSegmentIndex_Search(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEpisode("ep-abc", testChapters()))

	result, err := index.Search(context.Background(), Params{Query: "kubernetes", TopK: 5})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	hit := result.Hits[0]
	assert.Equal(t, "ep-abc", hit.EpisodeID)
	assert.Equal(t, 0, hit.ChapterID)
	assert.Equal(t, 0.0, hit.SegmentStart)
	assert.Equal(t, 60.0, hit.SegmentEnd)
	assert.NotEmpty(t, hit.Snippet)
	assert.Greater(t, hit.Score, 0.0)
}

func TestSegmentIndex_SearchTopK(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEpisode("ep-abc", testChapters()))

	result, err := index.Search(context.Background(), Params{Query: "the", TopK: 1})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Hits), 1)
}

func TestSegmentIndex_SearchEpisodeFilter(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEpisode("ep-one", testChapters()))
	require.NoError(t, index.IndexEpisode("ep-two", testChapters()))

	result, err := index.Search(context.Background(), Params{
		Query:     "coffee",
		EpisodeID: "ep-one",
		TopK:      10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	for _, hit := range result.Hits {
		assert.Equal(t, "ep-one", hit.EpisodeID)
	}
}

func TestSegmentIndex_DeleteEpisode(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEpisode("ep-one", testChapters()))
	require.NoError(t, index.IndexEpisode("ep-two", testChapters()))

	require.NoError(t, index.DeleteEpisode("ep-one"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	result, err := index.Search(context.Background(), Params{Query: "kubernetes", TopK: 10})
	require.NoError(t, err)
	for _, hit := range result.Hits {
		assert.Equal(t, "ep-two", hit.EpisodeID)
	}
}

func TestSegmentIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEpisode("ep-abc", testChapters()))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestEpisodeToDocuments(t *testing.T) {
	docs := EpisodeToDocuments("ep-abc", testChapters())

	require.Len(t, docs, 4)
	assert.Equal(t, "ep-abc:0", docs[0].ID)
	assert.Equal(t, "ep-abc:3", docs[3].ID)
	assert.Equal(t, 1, docs[3].ChapterID)
	assert.Equal(t, 180.0, docs[3].Start)
}
