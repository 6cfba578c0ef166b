// Package account implements the free/locked balance primitive shared by
// every coin and asset account in a Portfolio.
package account

import "marketsim/internal/marketerr"

// Account tracks a total balance and the portion of it reserved against
// resting orders. Free is always total-locked and is never stored
// directly so the two can never drift apart.
type Account struct {
	total  uint64
	locked uint64
}

// New returns an Account with the given starting balance and nothing
// locked.
func New(initial uint64) Account {
	return Account{total: initial}
}

// Total returns the full balance, free and locked combined.
func (a Account) Total() uint64 { return a.total }

// Locked returns the portion reserved against resting orders.
func (a Account) Locked() uint64 { return a.locked }

// Free returns the spendable balance.
func (a Account) Free() uint64 { return a.total - a.locked }

// Add credits the account. Never fails.
func (a *Account) Add(n uint64) {
	a.total += n
}

// Lock reserves n units out of the free balance.
func (a *Account) Lock(n uint64) error {
	if a.Free() < n {
		return marketerr.New(marketerr.InsufficientFreeAmount)
	}
	a.locked += n
	return nil
}

// Unlock releases n units previously reserved, returning them to free.
func (a *Account) Unlock(n uint64) error {
	if a.locked < n {
		return marketerr.New(marketerr.InsufficientLockedAmount)
	}
	a.locked -= n
	return nil
}

// SpendFromFree decreases total by n, drawn from the free balance.
func (a *Account) SpendFromFree(n uint64) error {
	if a.Free() < n {
		return marketerr.New(marketerr.InsufficientFreeAmount)
	}
	a.total -= n
	return nil
}

// SpendFromLocked consumes n units that were already reserved: both
// locked and total decrease by n.
func (a *Account) SpendFromLocked(n uint64) error {
	if a.locked < n {
		return marketerr.New(marketerr.InsufficientLockedAmount)
	}
	a.locked -= n
	a.total -= n
	return nil
}
