package market

import (
	"time"

	"marketsim/internal/ids"
)

// Trade records one settled match between a buyer and a seller. The
// engine does not keep a historical log of these (an explicit Non-goal);
// a trade only lives as long as the call that produced it.
type Trade struct {
	ID        ids.TradeID
	Asset     ids.AssetID
	Buyer     ids.PortfolioID
	Seller    ids.PortfolioID
	Price     uint64
	Quantity  uint64
	Timestamp time.Time
}
