package market

import (
	"marketsim/internal/account"
	"marketsim/internal/ids"
	"marketsim/internal/marketerr"
)

// Portfolio groups one coin account with one account per known asset.
// The keys of Assets always equal the set of known asset ids: creating a
// portfolio seeds a zero account for every existing asset, and creating
// an asset seeds a zero account for it on every existing portfolio.
type Portfolio struct {
	ID     ids.PortfolioID
	Coins  account.Account
	Assets map[ids.AssetID]*account.Account
}

func newPortfolio(initialCoins uint64) *Portfolio {
	return &Portfolio{
		ID:     ids.New(),
		Coins:  account.New(initialCoins),
		Assets: make(map[ids.AssetID]*account.Account),
	}
}

// assetAccount returns the portfolio's account for asset, or
// AssetNotFound if the portfolio has no such account (which should only
// happen for an asset id that was never created).
func (p *Portfolio) assetAccount(asset ids.AssetID) (*account.Account, error) {
	acc, ok := p.Assets[asset]
	if !ok {
		return nil, marketerr.NewWithID(marketerr.AssetNotFound, asset)
	}
	return acc, nil
}

func (p *Portfolio) clone() *Portfolio {
	cp := &Portfolio{
		ID:     p.ID,
		Coins:  p.Coins,
		Assets: make(map[ids.AssetID]*account.Account, len(p.Assets)),
	}
	for assetID, acc := range p.Assets {
		a := *acc
		cp.Assets[assetID] = &a
	}
	return cp
}
