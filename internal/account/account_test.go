package account

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketsim/internal/marketerr"
)

func insufficientFree() error   { return marketerr.New(marketerr.InsufficientFreeAmount) }
func insufficientLocked() error { return marketerr.New(marketerr.InsufficientLockedAmount) }

func TestNewAccountIsAllFree(t *testing.T) {
	a := New(100)
	assert.Equal(t, uint64(100), a.Total())
	assert.Equal(t, uint64(0), a.Locked())
	assert.Equal(t, uint64(100), a.Free())
}

func TestLockReducesFreeNotTotal(t *testing.T) {
	a := New(100)
	assert.NoError(t, a.Lock(40))
	assert.Equal(t, uint64(100), a.Total())
	assert.Equal(t, uint64(40), a.Locked())
	assert.Equal(t, uint64(60), a.Free())
}

func TestLockFailsWhenFreeInsufficient(t *testing.T) {
	a := New(10)
	err := a.Lock(11)
	assert.ErrorIs(t, err, insufficientFree())
}

func TestUnlockFailsWhenLockedInsufficient(t *testing.T) {
	a := New(10)
	err := a.Unlock(1)
	assert.ErrorIs(t, err, insufficientLocked())
}

func TestSpendFromFreeOnlyDecreasesTotal(t *testing.T) {
	a := New(100)
	assert.NoError(t, a.Lock(20))
	assert.NoError(t, a.SpendFromFree(30))
	assert.Equal(t, uint64(70), a.Total())
	assert.Equal(t, uint64(20), a.Locked())
	assert.Equal(t, uint64(50), a.Free())
}

func TestSpendFromLockedDecreasesBoth(t *testing.T) {
	a := New(100)
	assert.NoError(t, a.Lock(20))
	assert.NoError(t, a.SpendFromLocked(20))
	assert.Equal(t, uint64(80), a.Total())
	assert.Equal(t, uint64(0), a.Locked())
}

func TestSpendFromLockedFailsBeyondLocked(t *testing.T) {
	a := New(100)
	assert.NoError(t, a.Lock(20))
	err := a.SpendFromLocked(21)
	assert.ErrorIs(t, err, insufficientLocked())
}

func TestAddNeverFails(t *testing.T) {
	a := New(0)
	a.Add(5)
	a.Add(5)
	assert.Equal(t, uint64(10), a.Total())
}
