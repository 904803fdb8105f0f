// Package store keeps the latest receiver statistics per receiver in BoltDB.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"ReelMonitor/internal/model"
)

var statsBucket = []byte("stats")

// Store wraps a bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state db %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(statsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state db %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// PutStats records m as the latest statistics of its receiver.
func (s *Store) PutStats(m model.InfrastructureMessage) error {
	if m.ReceiverID == "" {
		return errors.New("statistics without receiverId")
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(statsBucket).Put([]byte(m.ReceiverID), b)
	})
}

// LatestStats returns the latest statistics of every receiver, keyed by receiverId.
func (s *Store) LatestStats() (map[string]model.InfrastructureMessage, error) {
	out := map[string]model.InfrastructureMessage{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(statsBucket).ForEach(func(k, v []byte) error {
			var m model.InfrastructureMessage
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("decode stats for %s: %w", k, err)
			}
			out[string(k)] = m
			return nil
		})
	})
	return out, err
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
