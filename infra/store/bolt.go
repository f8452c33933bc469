// Package store persists the fleet in an embedded bbolt database and
// implements the transactional capability the committer requires.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pmarg/reseat/core/commit"
	"github.com/pmarg/reseat/core/model"
)

var (
	bucketStudents = []byte("students")
	bucketBuses    = []byte("buses")
	bucketAudit    = []byte("audit")
)

// BoltStore implements commit.TransactionalStore on top of bbolt. A single
// db.Update transaction gives the serializable read-check-write sequence the
// committer relies on for mutual exclusion across concurrent operators.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures all buckets exist.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketStudents, bucketBuses, bucketAudit} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Snapshot bulk-reads every student and bus.
func (s *BoltStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var students []model.Student
	var buses []model.Bus
	err := s.db.View(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketStudents).ForEach(func(k, v []byte) error {
			var st model.Student
			if err := json.Unmarshal(v, &st); err != nil {
				return err
			}
			students = append(students, st)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketBuses).ForEach(func(k, v []byte) error {
			var b model.Bus
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			buses = append(buses, b)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return model.NewSnapshot(students, buses), nil
}

// RunInTransaction executes fn inside a single bbolt write transaction. A
// returned error rolls the whole transaction back.
func (s *BoltStore) RunInTransaction(ctx context.Context, fn func(tx commit.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// PutStudent upserts a student outside any engine transaction (seeding,
// imports).
func (s *BoltStore) PutStudent(st model.Student) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return (&boltTx{tx: tx}).PutStudent(st)
	})
}

// PutBus upserts a bus outside any engine transaction.
func (s *BoltStore) PutBus(b model.Bus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return (&boltTx{tx: tx}).PutBus(b)
	})
}

// ListAudit returns the most recent audit entries, newest first, up to
// limit. A non-positive limit returns everything.
func (s *BoltStore) ListAudit(ctx context.Context, limit int) ([]commit.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []commit.AuditEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketAudit).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry commit.AuditEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				return nil
			}
		}
		return nil
	})
	return entries, err
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) Student(id string) (model.Student, error) {
	var st model.Student
	data := t.tx.Bucket(bucketStudents).Get([]byte(id))
	if data == nil {
		return st, fmt.Errorf("student not found: %s", id)
	}
	err := json.Unmarshal(data, &st)
	return st, err
}

func (t *boltTx) Bus(id string) (model.Bus, error) {
	var b model.Bus
	data := t.tx.Bucket(bucketBuses).Get([]byte(id))
	if data == nil {
		return b, fmt.Errorf("bus not found: %s", id)
	}
	err := json.Unmarshal(data, &b)
	return b, err
}

func (t *boltTx) PutStudent(st model.Student) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketStudents).Put([]byte(st.ID), data)
}

func (t *boltTx) PutBus(b model.Bus) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketBuses).Put([]byte(b.ID), data)
}

func (t *boltTx) AppendAudit(entry commit.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	// Keys sort chronologically so the newest entry is last in the bucket.
	key := entry.CreatedAt.UTC().Format(time.RFC3339Nano) + "/" + entry.ID
	return t.tx.Bucket(bucketAudit).Put([]byte(key), data)
}
