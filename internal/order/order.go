// Package order defines the immutable Order value and its matching and
// splitting semantics.
package order

import (
	"encoding/json"
	"fmt"
	"time"

	"marketsim/internal/ids"
	"marketsim/internal/marketerr"
)

// Side is which direction of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// MarshalJSON renders a Side as "buy" or "sell".
func (s Side) MarshalJSON() ([]byte, error) {
	if s == Buy {
		return []byte(`"buy"`), nil
	}
	return []byte(`"sell"`), nil
}

// UnmarshalJSON parses "buy" or "sell" into a Side.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "buy":
		*s = Buy
	case "sell":
		*s = Sell
	default:
		return fmt.Errorf("order: invalid side %q", str)
	}
	return nil
}

// ModeKind distinguishes a Best order (trades at any counterparty's
// limit) from a Limit order (bounded by Price).
type ModeKind int

const (
	Limit ModeKind = iota
	Best
)

// Mode is the tagged union of an order's pricing rule: either Best, or
// Limit carrying a positive price. Price is meaningless when Kind is
// Best and must be ignored by callers.
type Mode struct {
	Kind  ModeKind
	Price uint64
}

// LimitMode builds a Limit(price) mode.
func LimitMode(price uint64) Mode { return Mode{Kind: Limit, Price: price} }

// BestMode builds a Best mode.
func BestMode() Mode { return Mode{Kind: Best} }

// modeWire is the wire form of a Mode: {"kind":"best"} or
// {"kind":"limit","price":n}.
type modeWire struct {
	Kind  string `json:"kind"`
	Price uint64 `json:"price,omitempty"`
}

// MarshalJSON renders a Mode as {"kind":"best"} or
// {"kind":"limit","price":n}.
func (m Mode) MarshalJSON() ([]byte, error) {
	if m.Kind == Best {
		return json.Marshal(modeWire{Kind: "best"})
	}
	return json.Marshal(modeWire{Kind: "limit", Price: m.Price})
}

// UnmarshalJSON parses {"kind":"best"} or {"kind":"limit","price":n} into
// a Mode.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var w modeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case "best":
		*m = BestMode()
	case "limit":
		*m = LimitMode(w.Price)
	default:
		return fmt.Errorf("order: invalid mode kind %q", w.Kind)
	}
	return nil
}

// limit returns the mode's price, or NoLimitForBestOrder if the mode is
// Best.
func (m Mode) limit() (uint64, error) {
	if m.Kind == Best {
		return 0, marketerr.New(marketerr.NoLimitForBestOrder)
	}
	return m.Price, nil
}

// Order is an immutable standing instruction to trade Quantity units of
// Asset at a price constraint described by Mode. "Modifying" an order
// means splitting and replacing it; nothing ever mutates Quantity after
// construction except internally by the book, which always operates on
// a freshly split copy.
type Order struct {
	ID        ids.OrderID
	Asset     ids.AssetID
	Portfolio ids.PortfolioID
	Side      Side
	Mode      Mode
	Quantity  uint64
	CreatedAt time.Time
	Expires   time.Time
}

// New validates and constructs an Order, stamping CreatedAt at the
// current time.
func New(portfolio ids.PortfolioID, asset ids.AssetID, side Side, mode Mode, quantity uint64, expires time.Time) (*Order, error) {
	if quantity == 0 {
		return nil, marketerr.New(marketerr.QuantityCantBeZero)
	}
	if mode.Kind == Limit && mode.Price == 0 {
		return nil, marketerr.New(marketerr.LimitCantBeZero)
	}
	return &Order{
		ID:        ids.New(),
		Asset:     asset,
		Portfolio: portfolio,
		Side:      side,
		Mode:      mode,
		Quantity:  quantity,
		CreatedAt: time.Now(),
		Expires:   expires,
	}, nil
}

// Expired reports whether this order's expiry has passed as of now.
func (o *Order) Expired(now time.Time) bool {
	return !o.Expires.IsZero() && now.After(o.Expires)
}

// Matches reports whether o (the incoming order) can trade against other
// (a resting candidate): same asset, opposite sides, and compatible
// pricing modes.
func (o *Order) Matches(other *Order) bool {
	if o.Asset != other.Asset {
		return false
	}
	if o.Side == other.Side {
		return false
	}

	switch {
	case o.Mode.Kind == Best && other.Mode.Kind == Best:
		return false
	case o.Mode.Kind == Best || other.Mode.Kind == Best:
		return true
	default:
		// Both Limit: compatible iff the seller's price <= the buyer's price.
		var sellPrice, buyPrice uint64
		if o.Side == Sell {
			sellPrice, buyPrice = o.Mode.Price, other.Mode.Price
		} else {
			sellPrice, buyPrice = other.Mode.Price, o.Mode.Price
		}
		return sellPrice <= buyPrice
	}
}

// TradePrice resolves the price at which o should settle against other,
// a matched candidate. If o is Best, the candidate's limit is used
// (guaranteed Limit by Matches); if o is Limit, its own price is used —
// the incoming order's price always wins over the resting side's.
func (o *Order) TradePrice(other *Order) (uint64, error) {
	if o.Mode.Kind == Best {
		return other.Mode.limit()
	}
	return o.Mode.Price, nil
}

// Split divides the order into two orders of the same id, asset,
// portfolio, side, mode and timestamps, with quantities q and
// (o.Quantity-q). Requires 0 < q < o.Quantity.
func (o *Order) Split(q uint64) (filled, remainder *Order, err error) {
	if q == 0 || q >= o.Quantity {
		return nil, nil, marketerr.New(marketerr.CantSplitOrder)
	}
	left := *o
	left.Quantity = q
	right := *o
	right.Quantity = o.Quantity - q
	return &left, &right, nil
}
