package store

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/podscribeapp/podscribe-server/internal/domain"
)

const episodePrefix = "episode:"

// CreateEpisode stores a new episode.
// Returns ErrAlreadyExists if an episode with this ID already exists.
func (s *Store) CreateEpisode(ctx context.Context, episode *domain.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(episode)
	if err != nil {
		return fmt.Errorf("marshal episode: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(episodePrefix + episode.ID)

		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set episode: %w", err)
		}

		return s.setEpisodeIndexes(txn, episode)
	})
}

// GetEpisode retrieves an episode by ID.
func (s *Store) GetEpisode(ctx context.Context, id string) (*domain.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(episodePrefix + id)

	var episode domain.Episode
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get episode: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &episode)
		})
	})

	if err != nil {
		return nil, err
	}
	return &episode, nil
}

// UpdateEpisode replaces an existing episode.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) UpdateEpisode(ctx context.Context, episode *domain.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(episode)
	if err != nil {
		return fmt.Errorf("marshal episode: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(episodePrefix + episode.ID)

		// Old value is needed to clean up stale indexes.
		var oldEpisode domain.Episode
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get existing: %w", err)
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &oldEpisode)
		}); err != nil {
			return fmt.Errorf("unmarshal old episode: %w", err)
		}

		if err := s.deleteEpisodeIndexes(txn, &oldEpisode); err != nil {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set episode: %w", err)
		}

		return s.setEpisodeIndexes(txn, episode)
	})
}

// DeleteEpisode deletes an episode by ID. Deleting a missing episode is a
// no-op.
func (s *Store) DeleteEpisode(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(episodePrefix + id)

		var episode domain.Episode
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Idempotent
		}
		if err != nil {
			return fmt.Errorf("get episode: %w", err)
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &episode)
		}); err != nil {
			return fmt.Errorf("unmarshal episode: %w", err)
		}

		if err := s.deleteEpisodeIndexes(txn, &episode); err != nil {
			return err
		}

		return txn.Delete(key)
	})
}

// ListEpisodes returns all episodes, newest first.
func (s *Store) ListEpisodes(ctx context.Context) ([]*domain.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(episodePrefix)
	indexPrefix := []byte(episodePrefix + "idx:")

	var episodes []*domain.Episode
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Skip index entries that share the prefix.
			if bytes.HasPrefix(it.Item().Key(), indexPrefix) {
				continue
			}

			var episode domain.Episode
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &episode)
			}); err != nil {
				return fmt.Errorf("unmarshal episode: %w", err)
			}
			episodes = append(episodes, &episode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].CreatedAt.After(episodes[j].CreatedAt)
	})
	return episodes, nil
}

// ListEpisodesByStatus returns episodes in the given status, newest first.
func (s *Store) ListEpisodesByStatus(ctx context.Context, status domain.EpisodeStatus) ([]*domain.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexPrefix := []byte(statusIndexPrefix(status))

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = indexPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return fmt.Errorf("read index entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	episodes := make([]*domain.Episode, 0, len(ids))
	for _, id := range ids {
		episode, err := s.GetEpisode(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // Index lag; skip
			}
			return nil, err
		}
		episodes = append(episodes, episode)
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].CreatedAt.After(episodes[j].CreatedAt)
	})
	return episodes, nil
}

// statusIndexPrefix builds the key prefix for the status index.
func statusIndexPrefix(status domain.EpisodeStatus) string {
	return episodePrefix + "idx:status:" + string(status) + ":"
}

func (s *Store) setEpisodeIndexes(txn *badger.Txn, episode *domain.Episode) error {
	key := []byte(statusIndexPrefix(episode.Status) + episode.ID)
	if err := txn.Set(key, []byte(episode.ID)); err != nil {
		return fmt.Errorf("set status index: %w", err)
	}
	return nil
}

func (s *Store) deleteEpisodeIndexes(txn *badger.Txn, episode *domain.Episode) error {
	key := []byte(statusIndexPrefix(episode.Status) + episode.ID)
	if err := txn.Delete(key); err != nil {
		return fmt.Errorf("delete status index: %w", err)
	}
	return nil
}
