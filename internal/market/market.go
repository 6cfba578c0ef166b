// Package market implements the aggregate state of the simulation: every
// asset, every portfolio, every asset's order book, and the bank account
// that collects event fees, plus the order-placement, trade-settlement
// and cancellation logic that mutates them.
package market

import (
	"time"

	"marketsim/internal/account"
	"marketsim/internal/book"
	"marketsim/internal/ids"
	"marketsim/internal/marketerr"
	"marketsim/internal/order"
)

// Market is the aggregate root. It is not safe for concurrent use on its
// own; the engine package serializes all access behind a single writer
// lock.
type Market struct {
	BankAccount uint64
	Portfolios  map[ids.PortfolioID]*Portfolio
	Assets      map[ids.AssetID]*Asset
	Books       map[ids.AssetID]*book.Book
}

// New returns an empty market: no assets, no portfolios, no bank balance.
func New() *Market {
	return &Market{
		Portfolios: make(map[ids.PortfolioID]*Portfolio),
		Assets:     make(map[ids.AssetID]*Asset),
		Books:      make(map[ids.AssetID]*book.Book),
	}
}

// CreateAsset registers a new tradable instrument, opens its book, and
// seeds a zero account for it on every existing portfolio.
func (m *Market) CreateAsset(name string) *Asset {
	asset := &Asset{ID: ids.New(), Name: name}
	m.Assets[asset.ID] = asset
	m.Books[asset.ID] = book.New(asset.ID)
	for _, p := range m.Portfolios {
		zero := account.New(0)
		p.Assets[asset.ID] = &zero
	}
	return asset
}

// CreatePortfolio opens a new portfolio with initialCoins free coins and
// a zero account for every asset known so far.
func (m *Market) CreatePortfolio(initialCoins uint64) *Portfolio {
	p := newPortfolio(initialCoins)
	for assetID := range m.Assets {
		zero := account.New(0)
		p.Assets[assetID] = &zero
	}
	m.Portfolios[p.ID] = p
	return p
}

// SeedAssetAmount credits a portfolio's asset account directly. This is
// a test/bootstrap fixture, not a market operation reachable through
// trading — asset balances otherwise only move between portfolios via a
// settled trade, so minting supply lives here rather than on any
// resting-order path.
func (m *Market) SeedAssetAmount(portfolioID ids.PortfolioID, assetID ids.AssetID, amount uint64) error {
	p, err := m.getPortfolio(portfolioID)
	if err != nil {
		return err
	}
	acc, err := p.assetAccount(assetID)
	if err != nil {
		return err
	}
	acc.Add(amount)
	return nil
}

func (m *Market) GetAsset(id ids.AssetID) (*Asset, error) {
	a, ok := m.Assets[id]
	if !ok {
		return nil, marketerr.NewWithID(marketerr.AssetNotFound, id)
	}
	return a, nil
}

func (m *Market) GetPortfolio(id ids.PortfolioID) (*Portfolio, error) {
	return m.getPortfolio(id)
}

func (m *Market) getPortfolio(id ids.PortfolioID) (*Portfolio, error) {
	p, ok := m.Portfolios[id]
	if !ok {
		return nil, marketerr.NewWithID(marketerr.PortfolioNotFound, id)
	}
	return p, nil
}

func (m *Market) getBook(assetID ids.AssetID) (*book.Book, error) {
	b, ok := m.Books[assetID]
	if !ok {
		return nil, marketerr.NewWithID(marketerr.AssetNotFound, assetID)
	}
	return b, nil
}

// GetBook returns the read-only order book for an asset.
func (m *Market) GetBook(assetID ids.AssetID) (*book.Book, error) {
	return m.getBook(assetID)
}

// BillFee charges the flat per-event fee against a portfolio's free
// coins and deposits it into the bank account.
func (m *Market) BillFee(portfolioID ids.PortfolioID, amount uint64) error {
	p, err := m.getPortfolio(portfolioID)
	if err != nil {
		return err
	}
	if err := p.Coins.SpendFromFree(amount); err != nil {
		return err
	}
	m.BankAccount += amount
	return nil
}

// FillOrder is the matching entry point: it finds candidates to trade
// against incoming, settles whatever crosses, and rests whatever
// doesn't.
func (m *Market) FillOrder(incoming *order.Order, now time.Time) ([]*Trade, error) {
	bk, err := m.getBook(incoming.Asset)
	if err != nil {
		return nil, err
	}
	if err := bk.SweepExpired(now, m.refundLock); err != nil {
		return nil, err
	}

	candidates := bk.FindBestCandidatesToFill(incoming)
	if len(candidates) == 0 {
		if err := m.addOrder(incoming, true); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var fillSum uint64
	for _, c := range candidates {
		fillSum += c.Quantity
	}

	filledOrder := incoming
	var requeue *order.Order
	var requeueLock bool

	switch {
	case fillSum == incoming.Quantity:
		// Whole incoming trades against all candidates; nothing left over.
	case fillSum > incoming.Quantity:
		last := candidates[len(candidates)-1]
		excess := fillSum - incoming.Quantity
		filledPart, remainder, err := last.Split(last.Quantity - excess)
		if err != nil {
			return nil, err
		}
		candidates[len(candidates)-1] = filledPart
		requeue = remainder
		requeueLock = false // its lock was never released
	default: // fillSum < incoming.Quantity
		filledPart, remainder, err := incoming.Split(fillSum)
		if err != nil {
			return nil, err
		}
		filledOrder = filledPart
		requeue = remainder
		requeueLock = true
	}

	trades, err := m.processTrade(filledOrder, candidates)
	if err != nil {
		return trades, err
	}

	if requeue != nil {
		if err := m.addOrder(requeue, requeueLock); err != nil {
			return trades, err
		}
	}

	return trades, nil
}

// processTrade settles filledOrder against each candidate in turn,
// removing each candidate from the book as it clears, then removes
// filledOrder itself (a no-op if it was never resting).
func (m *Market) processTrade(filledOrder *order.Order, candidates []*order.Order) ([]*Trade, error) {
	bk, err := m.getBook(filledOrder.Asset)
	if err != nil {
		return nil, err
	}

	trades := make([]*Trade, 0, len(candidates))
	for _, other := range candidates {
		price, err := filledOrder.TradePrice(other)
		if err != nil {
			return trades, err
		}

		var buyer, seller ids.PortfolioID
		if filledOrder.Side == order.Buy {
			buyer, seller = filledOrder.Portfolio, other.Portfolio
		} else {
			buyer, seller = other.Portfolio, filledOrder.Portfolio
		}

		// Incoming spends from free; the resting side's reservation is
		// what gets consumed.
		useLockedCoins := filledOrder.Side == order.Sell
		useLockedAssets := filledOrder.Side == order.Buy

		quantity := other.Quantity
		if err := m.transferAsset(seller, buyer, filledOrder.Asset, quantity, useLockedAssets); err != nil {
			return trades, err
		}
		if err := m.transferCoins(buyer, seller, price*quantity, useLockedCoins); err != nil {
			return trades, err
		}

		trades = append(trades, &Trade{
			ID:        ids.New(),
			Asset:     filledOrder.Asset,
			Buyer:     buyer,
			Seller:    seller,
			Price:     price,
			Quantity:  quantity,
			Timestamp: time.Now(),
		})

		bk.RemoveOrder(other.ID)
	}
	bk.RemoveOrder(filledOrder.ID)

	return trades, nil
}

func (m *Market) transferAsset(from, to ids.PortfolioID, asset ids.AssetID, amount uint64, spendLocked bool) error {
	fromPortfolio, err := m.getPortfolio(from)
	if err != nil {
		return err
	}
	fromAcc, err := fromPortfolio.assetAccount(asset)
	if err != nil {
		return err
	}
	if spendLocked {
		if err := fromAcc.SpendFromLocked(amount); err != nil {
			return err
		}
	} else if err := fromAcc.SpendFromFree(amount); err != nil {
		return err
	}

	toPortfolio, err := m.getPortfolio(to)
	if err != nil {
		return err
	}
	toAcc, err := toPortfolio.assetAccount(asset)
	if err != nil {
		return err
	}
	toAcc.Add(amount)
	return nil
}

func (m *Market) transferCoins(from, to ids.PortfolioID, amount uint64, spendLocked bool) error {
	fromPortfolio, err := m.getPortfolio(from)
	if err != nil {
		return err
	}
	if spendLocked {
		if err := fromPortfolio.Coins.SpendFromLocked(amount); err != nil {
			return err
		}
	} else if err := fromPortfolio.Coins.SpendFromFree(amount); err != nil {
		return err
	}

	toPortfolio, err := m.getPortfolio(to)
	if err != nil {
		return err
	}
	toPortfolio.Coins.Add(amount)
	return nil
}

// addOrder locks the order's required balance (if lockAmount) and rests
// it in its book. A Best order can never rest — there is no reference
// price to wait at — so it always surfaces
// NotEnoughMatchingOrdersToImmediatelyFillBestOrder here, whether it
// arrived unmatched from FillOrder or as the unfilled remainder of a
// partial fill. Because this check comes before any locking,
// CantLockAmountForBestOrder is never returned from here.
func (m *Market) addOrder(o *order.Order, lockAmount bool) error {
	if o.Mode.Kind == order.Best {
		return marketerr.New(marketerr.NotEnoughMatchingOrdersToImmediatelyFillBestOrder)
	}

	p, err := m.getPortfolio(o.Portfolio)
	if err != nil {
		return err
	}

	if lockAmount {
		switch {
		case o.Side == order.Sell:
			acc, err := p.assetAccount(o.Asset)
			if err != nil {
				return err
			}
			if err := acc.Lock(o.Quantity); err != nil {
				return err
			}
		case o.Side == order.Buy:
			if err := p.Coins.Lock(o.Mode.Price * o.Quantity); err != nil {
				return err
			}
		}
	}

	bk, err := m.getBook(o.Asset)
	if err != nil {
		return err
	}
	return bk.AddOrder(o)
}

// CancelOrder releases a resting order's lock and removes it from its
// book. The caller's portfolio must own the order — a mismatch is
// reported as OrderNotFound to avoid leaking whether the id exists under
// a different owner.
func (m *Market) CancelOrder(portfolioID ids.PortfolioID, orderID ids.OrderID, assetID ids.AssetID, now time.Time) error {
	bk, err := m.getBook(assetID)
	if err != nil {
		return err
	}
	if err := bk.SweepExpired(now, m.refundLock); err != nil {
		return err
	}

	o, found := bk.GetOrder(orderID)
	if !found {
		return marketerr.NewWithID(marketerr.OrderNotFound, orderID)
	}
	if o.Asset != assetID {
		return marketerr.New(marketerr.InvalidAssetID)
	}
	if o.Portfolio != portfolioID {
		return marketerr.NewWithID(marketerr.OrderNotFound, orderID)
	}

	if err := m.refundLock(o); err != nil {
		return err
	}
	bk.RemoveOrder(orderID)
	return nil
}

// refundLock releases the balance a resting order reserved: used both by
// explicit cancellation and by the expiry sweep, which cancels an order
// on the market's behalf once its time is up.
func (m *Market) refundLock(o *order.Order) error {
	p, err := m.getPortfolio(o.Portfolio)
	if err != nil {
		return err
	}
	switch {
	case o.Side == order.Sell && o.Mode.Kind == order.Limit:
		acc, err := p.assetAccount(o.Asset)
		if err != nil {
			return err
		}
		return acc.Unlock(o.Quantity)
	case o.Side == order.Buy && o.Mode.Kind == order.Limit:
		return p.Coins.Unlock(o.Mode.Price * o.Quantity)
	default:
		// A Best order resting in the book is an invariant breach.
		return marketerr.New(marketerr.InvalidState)
	}
}

// Clone deep-copies the entire market for the engine's snapshot/rollback:
// portfolios, assets, books, and the bank balance.
func (m *Market) Clone() *Market {
	clone := &Market{
		BankAccount: m.BankAccount,
		Portfolios:  make(map[ids.PortfolioID]*Portfolio, len(m.Portfolios)),
		Assets:      make(map[ids.AssetID]*Asset, len(m.Assets)),
		Books:       make(map[ids.AssetID]*book.Book, len(m.Books)),
	}
	for id, p := range m.Portfolios {
		clone.Portfolios[id] = p.clone()
	}
	for id, a := range m.Assets {
		cp := *a
		clone.Assets[id] = &cp
	}
	for id, b := range m.Books {
		clone.Books[id] = b.Clone()
	}
	return clone
}
