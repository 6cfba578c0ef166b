package market

import "marketsim/internal/ids"

// Asset identifies a tradable instrument distinct from coins. Immutable
// after creation.
type Asset struct {
	ID   ids.AssetID
	Name string
}
