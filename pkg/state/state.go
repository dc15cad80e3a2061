// Package state persists per-item sync records in a local bbolt database.
// Update mode reads the download timestamp recorded here as the item's
// local creation time; filesystem birth times are not portable, so the
// record is authoritative and an item without one is treated as never
// downloaded.
package state

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"github.com/arthur-debert/modsync/pkg/errors"
)

const itemsBucket = "items"

// Record is what modsync remembers about one downloaded item.
type Record struct {
	DownloadedAt time.Time `json:"downloaded_at"`
	Checksum     string    `json:"checksum,omitempty"`
}

// Store is the bbolt-backed sync-state database.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrState, "failed to open state database %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(itemsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrState, "failed to create items bucket")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the record for an item id.
func (s *Store) Put(id string, rec Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(itemsBucket)).Put([]byte(id), val)
	})
}

// Get returns the record for an item id, or ok=false when none exists.
func (s *Store) Get(id string) (rec Record, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(itemsBucket)).Get([]byte(id))
		if val == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return Record{}, false, errors.Wrapf(err, errors.ErrState, "failed to read state for %s", id)
	}
	return rec, ok, nil
}

// Delete removes the record for an item id. Missing records are not an
// error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(itemsBucket)).Delete([]byte(id))
	})
}
