// Package ratings keeps a history of baseline validation runs. The
// compete command never persists anything; this store only backs the
// validate collaborator, so repeated calibrations can be compared over
// time.
package ratings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Result is one measured calibration of a baseline configuration against
// the reference engine.
type Result struct {
	When         time.Time `json:"when"`
	Baseline     string    `json:"baseline"`
	ReferenceElo int       `json:"reference_elo"`
	Games        int       `json:"games"`
	Score        float64   `json:"score"`
	EstimatedElo float64   `json:"estimated_elo"`
}

// Store wraps the badger database holding validation history.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ratings store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one validation result.
func (s *Store) Record(r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("validation/%d/%s/%d", r.When.UnixNano(), r.Baseline, r.ReferenceElo)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// History returns every stored result in key order, which is the order of
// their When timestamps.
func (s *Store) History() ([]Result, error) {
	var results []Result
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("validation/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r Result
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				results = append(results, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return results, err
}
