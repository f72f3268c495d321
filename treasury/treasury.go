/*
Package treasury is the value-transfer collaborator.

PURPOSE:
  The payroll engine never moves value itself; it asks a Transfer
  implementation to do so, exactly once per operation (or not at all).
  Transfers are all-or-nothing: a returned error means no value moved,
  and the calling operation aborts in full.

IMPLEMENTATIONS:
  Bank (this package) is an in-memory implementation with per-account
  balances, used for development and tests. A production deployment
  would adapt this interface to the real token/ledger system.
*/
package treasury

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Account identifies a balance holder outside the payroll pool.
type Account string

// Transfer moves value between the pool and external accounts.
// Both operations are atomic: they either fully succeed or leave all
// balances untouched.
type Transfer interface {
	// TransferIn moves amount from the source account into the pool.
	// Fails if the source holds less than amount.
	TransferIn(ctx context.Context, from Account, amount int64) error

	// TransferOut moves amount from the pool to the destination account.
	// Fails if the pool holds less than amount.
	TransferOut(ctx context.Context, to Account, amount int64) error
}

var (
	// ErrInsufficientFunds is returned when the debited side holds less
	// than the transfer amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTransfer is returned for empty accounts or non-positive
	// amounts.
	ErrInvalidTransfer = errors.New("invalid transfer")
)

// =============================================================================
// BANK - In-memory Transfer implementation
// =============================================================================

// Bank tracks per-account balances plus the pool's own balance.
type Bank struct {
	mu       sync.Mutex
	pool     Account
	balances map[Account]int64
}

// NewBank creates a bank whose pool balance is held under the given
// account name.
func NewBank(pool Account) *Bank {
	return &Bank{
		pool:     pool,
		balances: map[Account]int64{},
	}
}

// Mint credits an account out of thin air. Dev/test seeding only.
func (b *Bank) Mint(acct Account, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[acct] += amount
}

// Balance returns the current balance of an account.
func (b *Bank) Balance(acct Account) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[acct]
}

// PoolBalance returns the balance held by the pool account.
func (b *Bank) PoolBalance() int64 { return b.Balance(b.pool) }

func (b *Bank) TransferIn(_ context.Context, from Account, amount int64) error {
	if from == "" || amount <= 0 {
		return ErrInvalidTransfer
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[from] < amount {
		return fmt.Errorf("%w: account %s holds %d, need %d", ErrInsufficientFunds, from, b.balances[from], amount)
	}
	b.balances[from] -= amount
	b.balances[b.pool] += amount
	return nil
}

func (b *Bank) TransferOut(_ context.Context, to Account, amount int64) error {
	if to == "" || amount <= 0 {
		return ErrInvalidTransfer
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[b.pool] < amount {
		return fmt.Errorf("%w: pool holds %d, need %d", ErrInsufficientFunds, b.balances[b.pool], amount)
	}
	b.balances[b.pool] -= amount
	b.balances[to] += amount
	return nil
}
