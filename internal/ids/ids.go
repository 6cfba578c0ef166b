// Package ids defines the identifier types shared across the engine.
// Every Asset, Portfolio, Order and Trade is named by a uuid.UUID; these
// aliases exist so call sites read as what they are rather than as bare
// uuid.UUIDs, mirroring the original prototype's AccountId/AssetId/
// OrderId/PortfolioId type aliases.
package ids

import "github.com/google/uuid"

type (
	AssetID     = uuid.UUID
	PortfolioID = uuid.UUID
	OrderID     = uuid.UUID
	TradeID     = uuid.UUID
)

// New mints a fresh random identifier.
func New() uuid.UUID {
	return uuid.New()
}
