/*
Package bolt provides a bbolt-backed implementation of payroll.Store.

LAYOUT:
  payees:       identity -> JSON-encoded record
  payee_order:  8-byte big-endian sequence -> identity (registration order)
  pool_totals:  "totals" -> JSON-encoded counters
  events:       8-byte big-endian sequence -> JSON-encoded event

  Sequence keys come from the bucket's NextSequence, so iteration order
  is insertion order. Records are upserted by identity and never removed.
*/
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/warp/payroll-engine/payroll"
)

var (
	bucketPayees = []byte("payees")
	bucketOrder  = []byte("payee_order")
	bucketTotals = []byte("pool_totals")
	bucketEvents = []byte("events")

	keyTotals = []byte("totals")
)

// Store implements payroll.Store on bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath. The parent
// directory is created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("bolt: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPayees, bucketOrder, bucketTotals, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// =============================================================================
// PAYEES
// =============================================================================

func (s *Store) GetPayee(_ context.Context, id payroll.PayeeID) (payroll.PayeeRecord, bool, error) {
	var (
		rec   payroll.PayeeRecord
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketPayees).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return payroll.PayeeRecord{}, false, fmt.Errorf("bolt: load payee %s: %w", id, err)
	}
	return rec, found, nil
}

func (s *Store) PutPayee(_ context.Context, rec payroll.PayeeRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("bolt: encode payee %s: %w", rec.ID, err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		payees := tx.Bucket(bucketPayees)
		if payees.Get([]byte(rec.ID)) == nil {
			order := tx.Bucket(bucketOrder)
			seq, err := order.NextSequence()
			if err != nil {
				return err
			}
			if err := order.Put(seqKey(seq), []byte(rec.ID)); err != nil {
				return err
			}
		}
		return payees.Put([]byte(rec.ID), raw)
	})
	if err != nil {
		return fmt.Errorf("bolt: save payee %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) PayeeIDs(_ context.Context) ([]payroll.PayeeID, error) {
	var ids []payroll.PayeeID
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOrder).ForEach(func(_, v []byte) error {
			ids = append(ids, payroll.PayeeID(v))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: list payees: %w", err)
	}
	return ids, nil
}

func (s *Store) PayeeCount(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketPayees).Stats().KeyN
		return nil
	})
	return n, err
}

// =============================================================================
// POOL TOTALS
// =============================================================================

func (s *Store) Totals(_ context.Context) (payroll.PoolTotals, error) {
	var t payroll.PoolTotals
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketTotals).Get(keyTotals)
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &t)
	})
	if err != nil {
		return payroll.PoolTotals{}, fmt.Errorf("bolt: load totals: %w", err)
	}
	return t, nil
}

func (s *Store) PutTotals(_ context.Context, t payroll.PoolTotals) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("bolt: encode totals: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTotals).Put(keyTotals, raw)
	})
	if err != nil {
		return fmt.Errorf("bolt: save totals: %w", err)
	}
	return nil
}

// =============================================================================
// EVENTS
// =============================================================================

func (s *Store) AppendEvent(_ context.Context, ev payroll.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("bolt: encode event: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		events := tx.Bucket(bucketEvents)
		seq, err := events.NextSequence()
		if err != nil {
			return err
		}
		return events.Put(seqKey(seq), raw)
	})
	if err != nil {
		return fmt.Errorf("bolt: append event: %w", err)
	}
	return nil
}

func (s *Store) Events(_ context.Context) ([]payroll.Event, error) {
	var events []payroll.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(_, v []byte) error {
			var ev payroll.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			events = append(events, ev)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: load events: %w", err)
	}
	return events, nil
}

// seqKey encodes a bucket sequence number as an 8-byte big-endian key so
// iteration order matches insertion order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
