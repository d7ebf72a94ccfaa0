package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const usageBucket = "usage"

// usageRecord tracks how often an item name has been added and when it was
// last touched, for recency tiebreaks.
type usageRecord struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	LastSeen uint64 `json:"last_seen"`
}

// Store provides a BoltDB-backed usage ranking for quick-add suggestions.
// The data is advisory only; callers log and swallow its errors.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(usageBucket))
		if err != nil {
			return fmt.Errorf("create usage bucket: %w", err)
		}
		return nil
	})
}

// Increment records one more addition of the named item.
func (s *Store) Increment(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("item name is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(usageBucket))

		record := usageRecord{Name: name}
		if raw := bucket.Get([]byte(normalizeName(name))); raw != nil {
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode usage record: %w", err)
			}
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("advance usage sequence: %w", err)
		}

		record.Name = name
		record.Count++
		record.LastSeen = seq

		raw, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode usage record: %w", err)
		}
		return bucket.Put([]byte(normalizeName(name)), raw)
	})
}

// Top returns up to limit item names ranked by usage count, most recently
// used first among equals.
func (s *Store) Top(limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var records []usageRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(usageBucket))
		return bucket.ForEach(func(_, raw []byte) error {
			var record usageRecord
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode usage record: %w", err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].LastSeen > records[j].LastSeen
	})

	if len(records) > limit {
		records = records[:limit]
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}
	return names, nil
}

// normalizeName folds case so "Milk" and "milk" share one counter while the
// stored record keeps the casing of the latest addition.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
