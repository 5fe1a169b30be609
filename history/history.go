// Package history persists transcriptions and aggregates usage statistics.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/shekohex/voicetype/internal/types"
)

// Keys are timestamp-ordered so recency queries are a reverse scan.
const keyPrefix = "h:"

// Store is a badger-backed transcription history.
type Store struct {
	db *badger.DB
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store, used in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one history item and returns its ID. A missing ID or
// timestamp is assigned here; the item is never mutated afterwards.
func (s *Store) Save(ctx context.Context, item types.HistoryItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("marshal history item: %w", err)
	}

	key := itemKey(item.Timestamp, item.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return "", fmt.Errorf("save history item: %w", err)
	}
	return item.ID, nil
}

// Recent returns up to n items, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]types.HistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]types.HistoryItem, 0, n)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		// Seek past the last possible key in the prefix range.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(items) < n; it.Next() {
			var item types.HistoryItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return items, nil
}

// Stats summarizes usage across all persisted transcriptions.
type Stats struct {
	Sessions          int
	TotalWords        int
	TotalDuration     time.Duration
	AvgWordsPerMinute float64
}

// Stats aggregates usage statistics over the whole history.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	var st Stats
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item types.HistoryItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return err
			}
			st.Sessions++
			st.TotalWords += item.WordCount
			st.TotalDuration += item.Duration
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate history: %w", err)
	}

	if mins := st.TotalDuration.Minutes(); mins > 0 {
		st.AvgWordsPerMinute = float64(st.TotalWords) / mins
	}
	return st, nil
}

func itemKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", keyPrefix, ts.UnixNano(), id))
}
