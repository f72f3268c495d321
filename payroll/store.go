/*
store.go - Persistence interface for payroll state

PURPOSE:
  Defines the interface between the accounting engine and the host's
  durable store. State is accessed by logical field (records, counters,
  events), never as a custom binary layout.

CONTRACT:
  - PutPayee upserts by identity. The FIRST put of an identity appends it
    to the registration-ordered identity list; later puts update in place
    and never duplicate the list entry. Records are never deleted.
  - PayeeIDs returns every identity ever registered, in registration
    order. The locked-funds scan iterates this list.
  - The event log is append-only.
  - Implementations must not alias record state with callers
    (PayeeRecord.Clone exists for this).

IMPLEMENTATIONS:
  - store/memory: In-memory, for tests and dev
  - store/sqlite: SQLite with WAL, for production
  - store/bolt:   bbolt key-value buckets
*/
package payroll

import "context"

// Store persists payee records, pool counters, and the event log.
type Store interface {
	// GetPayee returns the record for id. ok is false if the identity
	// has never been stored.
	GetPayee(ctx context.Context, id PayeeID) (rec PayeeRecord, ok bool, err error)

	// PutPayee upserts a record, appending id to the ordered identity
	// list on first insert.
	PutPayee(ctx context.Context, rec PayeeRecord) error

	// PayeeIDs returns all identities ever registered, in registration
	// order.
	PayeeIDs(ctx context.Context) ([]PayeeID, error)

	// PayeeCount returns the number of identities ever registered.
	PayeeCount(ctx context.Context) (int, error)

	// Totals returns the pool-wide counters.
	Totals(ctx context.Context) (PoolTotals, error)

	// PutTotals stores the pool-wide counters.
	PutTotals(ctx context.Context, t PoolTotals) error

	// AppendEvent appends to the notification log.
	AppendEvent(ctx context.Context, ev Event) error

	// Events returns the notification log in append order.
	Events(ctx context.Context) ([]Event, error)
}
