package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

// SegmentIndex wraps a Bleve index with segment-level operations.
//
// Thread safety: All public methods are safe for concurrent use.
// The mutex protects against index corruption during rebuild operations.
type SegmentIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex // Protects index operations during rebuild
}

// Options configures the segment index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations
}

// mappingVersion is incremented whenever the index mapping changes.
// This triggers an automatic rebuild on startup when the version doesn't match.
const mappingVersion = "1"

// NewSegmentIndex creates or opens a segment index.
// If the existing index is corrupted or has an outdated mapping, it's
// removed and recreated; callers are expected to reindex ready episodes
// after a rebuild.
func NewSegmentIndex(opts Options) (*SegmentIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	if err := os.MkdirAll(opts.DataPath, 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "segments.bleve")
	versionPath := filepath.Join(opts.DataPath, "segments.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("segment index has no version file, will rebuild with current mapping",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("segment index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		indexMapping := buildIndexMapping()
		index, err = bleve.New(indexPath, indexMapping)
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write segment index version file", "error", writeErr)
		}
		logger.Info("created new segment index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing segment index", "path", indexPath)
	}

	return &SegmentIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *SegmentIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEpisode indexes all segments of an episode's chapters, replacing any
// previously indexed segments for that episode.
func (s *SegmentIndex) IndexEpisode(episodeID string, chapters []domain.Chapter) error {
	if err := s.DeleteEpisode(episodeID); err != nil {
		return fmt.Errorf("clear previous segments: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := EpisodeToDocuments(episodeID, chapters)

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			// Convert to map to ensure field names match the mapping (lowercase)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	s.logger.Debug("indexed episode segments", "episode_id", episodeID, "segments", len(docs))
	return nil
}

// DeleteEpisode removes all indexed segments for an episode.
func (s *SegmentIndex) DeleteEpisode(episodeID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.episodeDocumentIDs(episodeID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// episodeDocumentIDs lists document ids belonging to an episode.
func (s *SegmentIndex) episodeDocumentIDs(episodeID string) ([]string, error) {
	termQuery := bleve.NewTermQuery(episodeID)
	termQuery.SetField("episode_id")

	var ids []string
	from := 0
	const pageSize = 1000

	for {
		req := bleve.NewSearchRequestOptions(termQuery, pageSize, from, false)
		result, err := s.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("list episode documents: %w", err)
		}
		for _, hit := range result.Hits {
			ids = append(ids, hit.ID)
		}
		if len(result.Hits) < pageSize {
			return ids, nil
		}
		from += pageSize
	}
}

// DocumentCount returns the total number of indexed segments.
func (s *SegmentIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the existing index and creates a new one.
//
// IMPORTANT: This acquires an exclusive lock and blocks all other
// operations. Callers must reindex every ready episode afterwards.
func (s *SegmentIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	indexMapping := buildIndexMapping()
	index, err := bleve.New(s.path, indexMapping)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt segment index", "path", s.path)

	return nil
}
