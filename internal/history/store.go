// Package history archives the statistical summary of completed runs in a
// bbolt file so that repeated sampling experiments can be compared. Only
// aggregate figures are stored, never key material.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/screa/vanity-sampler/pkg/types"
)

var bucketRuns = []byte("runs")

// ErrNoBucket is returned when the database was not created by this package
var ErrNoBucket = errors.New("runs bucket missing")

// Run is one archived search
type Run struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Scheme     string        `json:"scheme"`
	Suffix     string        `json:"suffix"`
	SampleSize uint64        `json:"sample_size"`
	Workers    int           `json:"workers"`
	Guesses    uint64        `json:"guesses"`
	Found      uint64        `json:"found"`
	Report     types.Report  `json:"report"`
}

// Store is a bbolt backed run archive
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path and ensures the bucket exists.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Append stores r under a monotonically increasing sequence key
func (s *Store) Append(r Run) error {
	v, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return ErrNoBucket
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		var k [8]byte
		binary.BigEndian.PutUint64(k[:], seq)
		return b.Put(k[:], v)
	})
}

// List returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return ErrNoBucket
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode run %x: %w", k, err)
			}
			runs = append(runs, r)
		}
		return nil
	})
	return runs, err
}

// Count returns the number of archived runs
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return ErrNoBucket
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}
