package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/ids"
	"marketsim/internal/marketerr"
)

func mustOrder(t *testing.T, side Side, mode Mode, qty uint64) *Order {
	t.Helper()
	o, err := New(ids.New(), ids.New(), side, mode, qty, time.Now().Add(24*time.Hour))
	assert.NoError(t, err)
	return o
}

func TestNewRejectsZeroQuantity(t *testing.T) {
	_, err := New(ids.New(), ids.New(), Buy, LimitMode(10), 0, time.Now())
	k, ok := marketerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, marketerr.QuantityCantBeZero, k)
}

func TestNewRejectsZeroLimit(t *testing.T) {
	_, err := New(ids.New(), ids.New(), Buy, LimitMode(0), 10, time.Now())
	k, ok := marketerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, marketerr.LimitCantBeZero, k)
}

func TestMatchesRequiresOppositeSides(t *testing.T) {
	a := mustOrder(t, Buy, LimitMode(10), 5)
	b := mustOrder(t, Buy, LimitMode(10), 5)
	assert.False(t, a.Matches(b))
}

func TestMatchesRequiresSameAsset(t *testing.T) {
	asset1, asset2 := ids.New(), ids.New()
	buy, _ := New(ids.New(), asset1, Buy, LimitMode(10), 5, time.Now())
	sell, _ := New(ids.New(), asset2, Sell, LimitMode(10), 5, time.Now())
	assert.False(t, buy.Matches(sell))
}

func TestBestVsBestDoesNotMatch(t *testing.T) {
	a := mustOrder(t, Buy, BestMode(), 5)
	b := mustOrder(t, Sell, BestMode(), 5)
	assert.False(t, a.Matches(b))
}

func TestBestVsLimitAlwaysMatches(t *testing.T) {
	buy := mustOrder(t, Buy, BestMode(), 5)
	sell := mustOrder(t, Sell, LimitMode(999), 5)
	assert.True(t, buy.Matches(sell))
	assert.True(t, sell.Matches(buy))
}

func TestLimitVsLimitComparesPrice(t *testing.T) {
	buy := mustOrder(t, Buy, LimitMode(10), 5)
	cheapSell := mustOrder(t, Sell, LimitMode(9), 5)
	expensiveSell := mustOrder(t, Sell, LimitMode(11), 5)
	assert.True(t, buy.Matches(cheapSell))
	assert.False(t, buy.Matches(expensiveSell))
}

func TestTradePriceUsesIncomingLimit(t *testing.T) {
	buy := mustOrder(t, Buy, LimitMode(10), 5)
	sell := mustOrder(t, Sell, LimitMode(7), 5)
	price, err := buy.TradePrice(sell)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), price)
}

func TestTradePriceForBestUsesCandidateLimit(t *testing.T) {
	buy := mustOrder(t, Buy, BestMode(), 5)
	sell := mustOrder(t, Sell, LimitMode(7), 5)
	price, err := buy.TradePrice(sell)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), price)
}

func TestSplitPreservesQuantityAndID(t *testing.T) {
	o := mustOrder(t, Buy, LimitMode(10), 10)
	filled, remainder, err := o.Split(4)
	assert.NoError(t, err)
	assert.Equal(t, uint64(4), filled.Quantity)
	assert.Equal(t, uint64(6), remainder.Quantity)
	assert.Equal(t, o.ID, filled.ID)
	assert.Equal(t, o.ID, remainder.ID)
}

func TestSplitRejectsOutOfRange(t *testing.T) {
	o := mustOrder(t, Buy, LimitMode(10), 10)
	_, _, err := o.Split(0)
	k, _ := marketerr.KindOf(err)
	assert.Equal(t, marketerr.CantSplitOrder, k)

	_, _, err = o.Split(10)
	k, _ = marketerr.KindOf(err)
	assert.Equal(t, marketerr.CantSplitOrder, k)
}

func TestExpired(t *testing.T) {
	o := mustOrder(t, Buy, LimitMode(10), 10)
	o.Expires = time.Now().Add(-time.Second)
	assert.True(t, o.Expired(time.Now()))
}

func TestSideMarshalsAsLowercaseString(t *testing.T) {
	buyJSON, err := json.Marshal(Buy)
	require.NoError(t, err)
	assert.JSONEq(t, `"buy"`, string(buyJSON))

	sellJSON, err := json.Marshal(Sell)
	require.NoError(t, err)
	assert.JSONEq(t, `"sell"`, string(sellJSON))

	var s Side
	require.NoError(t, json.Unmarshal(buyJSON, &s))
	assert.Equal(t, Buy, s)
}

func TestModeMarshalsByKind(t *testing.T) {
	bestJSON, err := json.Marshal(BestMode())
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"best"}`, string(bestJSON))

	limitJSON, err := json.Marshal(LimitMode(42))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"limit","price":42}`, string(limitJSON))

	var m Mode
	require.NoError(t, json.Unmarshal(limitJSON, &m))
	assert.Equal(t, LimitMode(42), m)
}
