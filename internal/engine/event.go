package engine

import (
	"time"

	"marketsim/internal/ids"
	"marketsim/internal/order"
)

// EventKind tags which operation an Event carries.
type EventKind int

const (
	EventPlaceOrder EventKind = iota
	EventCancelOrder
)

// Event is the tagged union of every mutation the engine can dispatch,
// unifying order placement and cancellation into one value so
// Process/ProcessContext has a single entry point to wrap in a snapshot.
type Event struct {
	Kind EventKind

	// EventPlaceOrder
	Portfolio ids.PortfolioID
	Asset     ids.AssetID
	Side      order.Side
	Mode      order.Mode
	Quantity  uint64
	Expires   time.Time

	// EventCancelOrder
	Order ids.OrderID
}

// PlaceOrder builds an order-placement event.
func PlaceOrder(portfolio ids.PortfolioID, asset ids.AssetID, side order.Side, mode order.Mode, quantity uint64, expires time.Time) Event {
	return Event{
		Kind:      EventPlaceOrder,
		Portfolio: portfolio,
		Asset:     asset,
		Side:      side,
		Mode:      mode,
		Quantity:  quantity,
		Expires:   expires,
	}
}

// CancelOrder builds a cancellation event.
func CancelOrder(portfolio ids.PortfolioID, asset ids.AssetID, orderID ids.OrderID) Event {
	return Event{
		Kind:      EventCancelOrder,
		Portfolio: portfolio,
		Asset:     asset,
		Order:     orderID,
	}
}
