// Package query implements read-only projections of the market: the HTTP
// layer never hands out internal *market.Market/*order.Order pointers
// directly, only these flattened, JSON-friendly views.
package query

import (
	"marketsim/internal/account"
	"marketsim/internal/book"
	"marketsim/internal/engine"
	"marketsim/internal/ids"
	"marketsim/internal/market"
	"marketsim/internal/order"
)

// PublicOrder is a resting order stripped of the portfolio that owns it.
// The order id is kept so a client can name the order when cancelling.
type PublicOrder struct {
	ID       ids.OrderID  `json:"id"`
	Asset    ids.AssetID  `json:"asset"`
	Side     order.Side   `json:"side"`
	Mode     order.Mode   `json:"mode"`
	Quantity uint64       `json:"quantity"`
}

// PublicBook is one asset's resting orders, best-first on each side.
type PublicBook struct {
	Asset market.Asset  `json:"asset"`
	Buy   []PublicOrder `json:"buy"`
	Sell  []PublicOrder `json:"sell"`
}

func fromOrder(o *order.Order) PublicOrder {
	return PublicOrder{
		ID:       o.ID,
		Asset:    o.Asset,
		Side:     o.Side,
		Mode:     o.Mode,
		Quantity: o.Quantity,
	}
}

func fromBook(asset market.Asset, b *book.Book) PublicBook {
	buys, sells := b.Sides()
	pb := PublicBook{
		Asset: asset,
		Buy:   make([]PublicOrder, len(buys)),
		Sell:  make([]PublicOrder, len(sells)),
	}
	for i, o := range buys {
		pb.Buy[i] = fromOrder(o)
	}
	for i, o := range sells {
		pb.Sell[i] = fromOrder(o)
	}
	return pb
}

// Books returns a public projection of every asset's book, sorted by no
// particular order (the caller sorts if it needs to).
func Books(e *engine.Engine) []PublicBook {
	var out []PublicBook
	e.Read(func(m *market.Market) {
		out = make([]PublicBook, 0, len(m.Assets))
		for assetID, asset := range m.Assets {
			b := m.Books[assetID]
			out = append(out, fromBook(*asset, b))
		}
	})
	return out
}

// BookFor returns the public projection of a single asset's book.
func BookFor(e *engine.Engine, assetID ids.AssetID) (PublicBook, error) {
	var (
		pb  PublicBook
		err error
	)
	e.Read(func(m *market.Market) {
		asset, getErr := m.GetAsset(assetID)
		if getErr != nil {
			err = getErr
			return
		}
		b, getErr := m.GetBook(assetID)
		if getErr != nil {
			err = getErr
			return
		}
		pb = fromBook(*asset, b)
	})
	return pb, err
}

// Assets returns every known asset.
func Assets(e *engine.Engine) []market.Asset {
	var out []market.Asset
	e.Read(func(m *market.Market) {
		out = make([]market.Asset, 0, len(m.Assets))
		for _, a := range m.Assets {
			out = append(out, *a)
		}
	})
	return out
}

// Asset returns a single asset by id.
func Asset(e *engine.Engine, assetID ids.AssetID) (market.Asset, error) {
	var (
		a   market.Asset
		err error
	)
	e.Read(func(m *market.Market) {
		got, getErr := m.GetAsset(assetID)
		if getErr != nil {
			err = getErr
			return
		}
		a = *got
	})
	return a, err
}

// PortfolioView is a portfolio's balances, safe to hand back over HTTP:
// coin account plus one entry per asset account.
type PortfolioView struct {
	ID     ids.PortfolioID          `json:"id"`
	Coins  AccountView              `json:"coins"`
	Assets map[ids.AssetID]AccountView `json:"assets"`
}

// AccountView mirrors account.Account's three observable numbers.
type AccountView struct {
	Total  uint64 `json:"total"`
	Locked uint64 `json:"locked"`
	Free   uint64 `json:"free"`
}

func fromAccount(a account.Account) AccountView {
	return AccountView{Total: a.Total(), Locked: a.Locked(), Free: a.Free()}
}

// Portfolio returns a read-only view of one portfolio's balances.
func Portfolio(e *engine.Engine, portfolioID ids.PortfolioID) (PortfolioView, error) {
	var (
		view PortfolioView
		err  error
	)
	e.Read(func(m *market.Market) {
		p, getErr := m.GetPortfolio(portfolioID)
		if getErr != nil {
			err = getErr
			return
		}
		view = PortfolioView{
			ID:     p.ID,
			Coins:  fromAccount(p.Coins),
			Assets: make(map[ids.AssetID]AccountView, len(p.Assets)),
		}
		for assetID, acc := range p.Assets {
			view.Assets[assetID] = fromAccount(*acc)
		}
	})
	if err != nil {
		return PortfolioView{}, err
	}
	return view, nil
}
