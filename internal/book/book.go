// Package book implements the per-asset resting-order container: two
// price-time-priority sides, each backed by a red-black tree of price
// levels, supporting both Best and Limit order modes.
package book

import (
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"

	"marketsim/internal/ids"
	"marketsim/internal/marketerr"
	"marketsim/internal/order"
)

// priceLevel holds every resting order at one price, in arrival order.
type priceLevel struct {
	price  uint64
	orders []*order.Order
}

type location struct {
	side  order.Side
	price uint64
}

// Book is the resting-order container for a single asset.
type Book struct {
	AssetID ids.AssetID

	buys  *redblacktree.Tree // price desc (best bid first)
	sells *redblacktree.Tree // price asc (best ask first)

	at map[ids.OrderID]location
}

func ascending(a, b interface{}) int {
	ap, bp := a.(uint64), b.(uint64)
	switch {
	case ap < bp:
		return -1
	case ap > bp:
		return 1
	default:
		return 0
	}
}

func descending(a, b interface{}) int {
	return -ascending(a, b)
}

// New builds an empty book for asset.
func New(asset ids.AssetID) *Book {
	return &Book{
		AssetID: asset,
		buys:    redblacktree.NewWith(descending),
		sells:   redblacktree.NewWith(ascending),
		at:      make(map[ids.OrderID]location),
	}
}

func (b *Book) treeFor(side order.Side) *redblacktree.Tree {
	if side == order.Buy {
		return b.buys
	}
	return b.sells
}

// AddOrder rests o on its side of the book. o must already be Limit mode
// — a Best order can never rest, since it has no reference price to wait
// at.
func (b *Book) AddOrder(o *order.Order) error {
	if o.Mode.Kind == order.Best {
		return marketerr.New(marketerr.NotEnoughMatchingOrdersToImmediatelyFillBestOrder)
	}

	tree := b.treeFor(o.Side)
	price := o.Mode.Price

	var level *priceLevel
	if v, found := tree.Get(price); found {
		level = v.(*priceLevel)
	} else {
		level = &priceLevel{price: price}
		tree.Put(price, level)
	}
	level.orders = insertSortedByTime(level.orders, o)
	b.at[o.ID] = location{side: o.Side, price: price}
	return nil
}

// insertSortedByTime inserts o into orders keeping ascending CreatedAt
// order, so FIFO tie-break holds even if orders are requeued out of
// strict arrival order.
func insertSortedByTime(orders []*order.Order, o *order.Order) []*order.Order {
	i := len(orders)
	for i > 0 && orders[i-1].CreatedAt.After(o.CreatedAt) {
		i--
	}
	orders = append(orders, nil)
	copy(orders[i+1:], orders[i:])
	orders[i] = o
	return orders
}

// RemoveOrder removes the order with that id, if present; a no-op
// otherwise.
func (b *Book) RemoveOrder(id ids.OrderID) {
	loc, ok := b.at[id]
	if !ok {
		return
	}
	delete(b.at, id)

	tree := b.treeFor(loc.side)
	v, found := tree.Get(loc.price)
	if !found {
		return
	}
	level := v.(*priceLevel)
	for i, o := range level.orders {
		if o.ID == id {
			level.orders = append(level.orders[:i], level.orders[i+1:]...)
			break
		}
	}
	if len(level.orders) == 0 {
		tree.Remove(loc.price)
	}
}

// GetOrder returns the resting order with the given id, if present.
func (b *Book) GetOrder(id ids.OrderID) (*order.Order, bool) {
	loc, ok := b.at[id]
	if !ok {
		return nil, false
	}
	tree := b.treeFor(loc.side)
	v, found := tree.Get(loc.price)
	if !found {
		return nil, false
	}
	level := v.(*priceLevel)
	for _, o := range level.orders {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// oppositeSide returns which side of the book a given incoming side
// matches against.
func oppositeSide(s order.Side) order.Side {
	if s == order.Buy {
		return order.Sell
	}
	return order.Buy
}

// FindBestCandidatesToFill walks the opposite side in best-first order,
// collecting orders that match incoming until either a non-matching
// order is hit or the accumulated candidate quantity reaches
// incoming.Quantity.
func (b *Book) FindBestCandidatesToFill(incoming *order.Order) []*order.Order {
	tree := b.treeFor(oppositeSide(incoming.Side))

	var candidates []*order.Order
	var filled uint64

	it := tree.Iterator()
	it.Begin()
	for it.Next() {
		level := it.Value().(*priceLevel)
		for _, resting := range level.orders {
			if !incoming.Matches(resting) {
				return candidates
			}
			candidates = append(candidates, resting)
			filled += resting.Quantity
			if filled >= incoming.Quantity {
				return candidates
			}
		}
	}
	return candidates
}

// SweepExpired removes every resting order whose expiry has passed as of
// now, invoking refund for each one before removing it so the caller can
// release the lock that order held. Errors from refund abort the sweep
// and are returned to the caller; refunding a lock should never fail in
// practice since the lock amount was reserved when the order was added.
func (b *Book) SweepExpired(now time.Time, refund func(*order.Order) error) error {
	expired := make([]*order.Order, 0)
	for _, tree := range []*redblacktree.Tree{b.buys, b.sells} {
		it := tree.Iterator()
		it.Begin()
		for it.Next() {
			level := it.Value().(*priceLevel)
			for _, o := range level.orders {
				if o.Expired(now) {
					expired = append(expired, o)
				}
			}
		}
	}
	for _, o := range expired {
		if err := refund(o); err != nil {
			return err
		}
		b.RemoveOrder(o.ID)
	}
	return nil
}

// Sides returns every resting order on the buy and sell sides, in
// best-first order, for read-only projections.
func (b *Book) Sides() (buys, sells []*order.Order) {
	buys = flatten(b.buys)
	sells = flatten(b.sells)
	return
}

func flatten(tree *redblacktree.Tree) []*order.Order {
	var out []*order.Order
	it := tree.Iterator()
	it.Begin()
	for it.Next() {
		level := it.Value().(*priceLevel)
		out = append(out, level.orders...)
	}
	return out
}

// Clone deep-copies the book, used by the engine's snapshot/rollback.
// Order values are copied (Order is a flat struct of scalars and a
// time.Time, safe to copy by value), but price levels and trees are
// freshly built so mutating the clone never touches the original.
func (b *Book) Clone() *Book {
	clone := New(b.AssetID)
	buys, sells := b.Sides()
	for _, o := range buys {
		cp := *o
		_ = clone.AddOrder(&cp)
	}
	for _, o := range sells {
		cp := *o
		_ = clone.AddOrder(&cp)
	}
	return clone
}
