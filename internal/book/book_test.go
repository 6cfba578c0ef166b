package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketsim/internal/ids"
	"marketsim/internal/order"
)

func limitOrder(t *testing.T, asset ids.AssetID, side order.Side, price, qty uint64) *order.Order {
	t.Helper()
	o, err := order.New(ids.New(), asset, side, order.LimitMode(price), qty, time.Now().Add(time.Hour))
	assert.NoError(t, err)
	return o
}

func TestAddOrderRejectsBest(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	o, _ := order.New(ids.New(), asset, order.Buy, order.BestMode(), 5, time.Now().Add(time.Hour))
	err := b.AddOrder(o)
	assert.Error(t, err)
}

func TestBuysSortedHighestFirst(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	low := limitOrder(t, asset, order.Buy, 5, 1)
	high := limitOrder(t, asset, order.Buy, 10, 1)
	mid := limitOrder(t, asset, order.Buy, 7, 1)
	assert.NoError(t, b.AddOrder(low))
	assert.NoError(t, b.AddOrder(high))
	assert.NoError(t, b.AddOrder(mid))

	buys, _ := b.Sides()
	assert.Equal(t, []uint64{10, 7, 5}, pricesOf(buys))
}

func TestSellsSortedLowestFirst(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	low := limitOrder(t, asset, order.Sell, 5, 1)
	high := limitOrder(t, asset, order.Sell, 10, 1)
	mid := limitOrder(t, asset, order.Sell, 7, 1)
	assert.NoError(t, b.AddOrder(low))
	assert.NoError(t, b.AddOrder(high))
	assert.NoError(t, b.AddOrder(mid))

	_, sells := b.Sides()
	assert.Equal(t, []uint64{5, 7, 10}, pricesOf(sells))
}

func TestFIFOWithinPriceLevel(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	first := limitOrder(t, asset, order.Buy, 10, 1)
	time.Sleep(time.Millisecond)
	second := limitOrder(t, asset, order.Buy, 10, 1)
	assert.NoError(t, b.AddOrder(second))
	assert.NoError(t, b.AddOrder(first))

	buys, _ := b.Sides()
	assert.Equal(t, first.ID, buys[0].ID)
	assert.Equal(t, second.ID, buys[1].ID)
}

func TestRemoveOrderIsNoOpWhenAbsent(t *testing.T) {
	b := New(ids.New())
	b.RemoveOrder(ids.New()) // must not panic
}

func TestFindBestCandidatesStopsAtNonMatching(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	cheap := limitOrder(t, asset, order.Sell, 5, 3)
	expensive := limitOrder(t, asset, order.Sell, 50, 3)
	assert.NoError(t, b.AddOrder(cheap))
	assert.NoError(t, b.AddOrder(expensive))

	buy := limitOrder(t, asset, order.Buy, 10, 10)
	candidates := b.FindBestCandidatesToFill(buy)
	assert.Equal(t, 1, len(candidates))
	assert.Equal(t, cheap.ID, candidates[0].ID)
}

func TestFindBestCandidatesStopsAtSufficientQuantity(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	a := limitOrder(t, asset, order.Sell, 5, 3)
	c := limitOrder(t, asset, order.Sell, 6, 3)
	d := limitOrder(t, asset, order.Sell, 7, 3)
	assert.NoError(t, b.AddOrder(a))
	assert.NoError(t, b.AddOrder(c))
	assert.NoError(t, b.AddOrder(d))

	buy := limitOrder(t, asset, order.Buy, 10, 5)
	candidates := b.FindBestCandidatesToFill(buy)
	assert.Equal(t, 2, len(candidates))
}

func TestSweepExpiredRefundsAndRemoves(t *testing.T) {
	asset := ids.New()
	b := New(asset)
	stale, _ := order.New(ids.New(), asset, order.Buy, order.LimitMode(10), 5, time.Now().Add(time.Millisecond))
	assert.NoError(t, b.AddOrder(stale))
	time.Sleep(2 * time.Millisecond)

	var refunded []ids.OrderID
	err := b.SweepExpired(time.Now(), func(o *order.Order) error {
		refunded = append(refunded, o.ID)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []ids.OrderID{stale.ID}, refunded)

	_, found := b.GetOrder(stale.ID)
	assert.False(t, found)
}

func pricesOf(orders []*order.Order) []uint64 {
	out := make([]uint64, len(orders))
	for i, o := range orders {
		out[i] = o.Mode.Price
	}
	return out
}
