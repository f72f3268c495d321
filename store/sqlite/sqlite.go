/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Durable storage for payee records, pool counters, and the notification
  log. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  payees:      One row per identity ever registered. The AUTOINCREMENT
               seq column preserves registration order for the
               locked-funds scan. Rows are upserted, never deleted.
  pool_totals: Single row of monotone counters.
  events:      Append-only notification log.

WAL MODE:
  Opened with WAL for better concurrency and crash recovery. The engine
  serializes mutations anyway; the store-level mutex only protects the
  *sql.DB handle across mixed read/write use from the query surface.

USAGE:
  store, err := sqlite.New("./payroll.db")
  if err != nil { ... }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payees (
		seq                 INTEGER PRIMARY KEY AUTOINCREMENT,
		id                  TEXT NOT NULL UNIQUE,
		period_entitlement  INTEGER NOT NULL,
		period_start        INTEGER NOT NULL,
		active              INTEGER NOT NULL,
		withdrawn_in_period INTEGER NOT NULL,
		outstanding_advance INTEGER NOT NULL,
		last_advance_period INTEGER
	);

	CREATE TABLE IF NOT EXISTS pool_totals (
		id        INTEGER PRIMARY KEY CHECK (id = 1),
		funded    INTEGER NOT NULL,
		withdrawn INTEGER NOT NULL,
		refunded  INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO pool_totals (id, funded, withdrawn, refunded) VALUES (1, 0, 0, 0);

	CREATE TABLE IF NOT EXISTS events (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		kind      TEXT NOT NULL,
		actor     TEXT NOT NULL,
		payee     TEXT NOT NULL,
		amount    INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		at        INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// =============================================================================
// PAYEES
// =============================================================================

func (s *Store) GetPayee(ctx context.Context, id payroll.PayeeID) (payroll.PayeeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, period_entitlement, period_start, active,
		       withdrawn_in_period, outstanding_advance, last_advance_period
		FROM payees WHERE id = ?`, string(id))

	var (
		rec         payroll.PayeeRecord
		recID       string
		start       int64
		active      int
		lastAdvance sql.NullInt64
	)
	err := row.Scan(&recID, &rec.PeriodEntitlement, &start, &active,
		&rec.WithdrawnInPeriod, &rec.OutstandingAdvance, &lastAdvance)
	if err == sql.ErrNoRows {
		return payroll.PayeeRecord{}, false, nil
	}
	if err != nil {
		return payroll.PayeeRecord{}, false, fmt.Errorf("failed to load payee %s: %w", id, err)
	}

	rec.ID = payroll.PayeeID(recID)
	rec.Active = active != 0
	if start != 0 {
		rec.PeriodStart = time.Unix(0, start).UTC()
	}
	if lastAdvance.Valid {
		idx := uint64(lastAdvance.Int64)
		rec.LastAdvancePeriod = &idx
	}
	return rec, true, nil
}

func (s *Store) PutPayee(ctx context.Context, rec payroll.PayeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var start int64
	if !rec.PeriodStart.IsZero() {
		start = rec.PeriodStart.UnixNano()
	}
	var lastAdvance sql.NullInt64
	if rec.LastAdvancePeriod != nil {
		lastAdvance = sql.NullInt64{Int64: int64(*rec.LastAdvancePeriod), Valid: true}
	}

	// Upsert preserving seq, so registration order survives updates.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payees (id, period_entitlement, period_start, active,
		                    withdrawn_in_period, outstanding_advance, last_advance_period)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			period_entitlement  = excluded.period_entitlement,
			period_start        = excluded.period_start,
			active              = excluded.active,
			withdrawn_in_period = excluded.withdrawn_in_period,
			outstanding_advance = excluded.outstanding_advance,
			last_advance_period = excluded.last_advance_period`,
		string(rec.ID), rec.PeriodEntitlement, start, boolToInt(rec.Active),
		rec.WithdrawnInPeriod, rec.OutstandingAdvance, lastAdvance)
	if err != nil {
		return fmt.Errorf("failed to save payee %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) PayeeIDs(ctx context.Context) ([]payroll.PayeeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM payees ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payees: %w", err)
	}
	defer rows.Close()

	var ids []payroll.PayeeID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, payroll.PayeeID(id))
	}
	return ids, rows.Err()
}

func (s *Store) PayeeCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payees`).Scan(&n)
	return n, err
}

// =============================================================================
// POOL TOTALS
// =============================================================================

func (s *Store) Totals(ctx context.Context) (payroll.PoolTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t payroll.PoolTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT funded, withdrawn, refunded FROM pool_totals WHERE id = 1`).
		Scan(&t.Funded, &t.Withdrawn, &t.Refunded)
	if err != nil {
		return payroll.PoolTotals{}, fmt.Errorf("failed to load pool totals: %w", err)
	}
	return t, nil
}

func (s *Store) PutTotals(ctx context.Context, t payroll.PoolTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE pool_totals SET funded = ?, withdrawn = ?, refunded = ? WHERE id = 1`,
		t.Funded, t.Withdrawn, t.Refunded)
	if err != nil {
		return fmt.Errorf("failed to save pool totals: %w", err)
	}
	return nil
}

// =============================================================================
// EVENTS
// =============================================================================

func (s *Store) AppendEvent(ctx context.Context, ev payroll.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (kind, actor, payee, amount, remaining, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(ev.Kind), ev.Actor, string(ev.Payee), ev.Amount, ev.Remaining, ev.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *Store) Events(ctx context.Context) ([]payroll.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, actor, payee, amount, remaining, at FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	var events []payroll.Event
	for rows.Next() {
		var (
			ev    payroll.Event
			kind  string
			payee string
			at    int64
		)
		if err := rows.Scan(&kind, &ev.Actor, &payee, &ev.Amount, &ev.Remaining, &at); err != nil {
			return nil, err
		}
		ev.Kind = payroll.EventKind(kind)
		ev.Payee = payroll.PayeeID(payee)
		ev.At = time.Unix(0, at).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
