// Package engine wraps a market.Market behind a single-writer lock, and
// gives every mutation a snapshot/dispatch/rollback treatment: a failed
// event leaves the market exactly as it found it, fee included.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketsim/internal/ids"
	"marketsim/internal/market"
	"marketsim/internal/marketerr"
	"marketsim/internal/metrics"
	"marketsim/internal/order"
)

// lockPollInterval is how often ProcessContext/ReadContext retry the
// non-blocking lock attempt while waiting on ctx. sync.RWMutex has no
// context-aware Lock, so EngineWasTooBusy is only reachable by racing
// the lock against ctx's deadline this way.
const lockPollInterval = time.Millisecond

// Result is what a successfully processed event produced.
type Result struct {
	OrderID ids.OrderID
	Trades  []*market.Trade
}

// Engine is the concurrency-safe entry point onto a Market: one writer
// at a time, many concurrent readers.
type Engine struct {
	mkt *market.Market
	mu  *lock

	fee uint64
	log zerolog.Logger
	met *metrics.Metrics
}

// New builds an engine around a fresh, empty market, charging fee coins
// per successfully processed event.
func New(fee uint64, log zerolog.Logger) *Engine {
	return &Engine{
		mkt: market.New(),
		mu:  newLock(),
		fee: fee,
		log: log,
		met: metrics.New(),
	}
}

// Metrics exposes the engine's collector set so the HTTP layer can serve
// /metrics from the same registry the engine reports into.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.met
}

// Market exposes the underlying aggregate for bootstrap operations
// (CreateAsset/CreatePortfolio) that fall outside the Event model — these
// are setup, not engine-processed events, so they take the write lock
// directly rather than going through Process.
func (e *Engine) Market() *market.Market {
	return e.mkt
}

// Lock/Unlock let callers (bootstrap admin handlers) hold the writer
// lock around direct Market mutations that aren't Events.
func (e *Engine) Lock()   { e.mu.Lock() }
func (e *Engine) Unlock() { e.mu.Unlock() }

// Process dispatches event with a background context; see ProcessContext.
func (e *Engine) Process(event Event) (*Result, error) {
	return e.ProcessContext(context.Background(), event)
}

// ProcessContext takes the write lock, snapshots the market, dispatches
// event, bills the flat event fee, and restores the snapshot if anything
// failed along the way — the market is only ever observed in a state
// that reflects zero or one fully-applied events, never a partial one.
func (e *Engine) ProcessContext(ctx context.Context, event Event) (*Result, error) {
	start := time.Now()
	if err := e.mu.lockContext(ctx); err != nil {
		e.log.Warn().Str("event", event.Kind.String()).Msg("engine busy, rejecting event")
		return nil, err
	}
	defer e.mu.Unlock()
	defer func() { e.met.ObserveEventLatency(time.Since(start)) }()

	if event.Kind == EventPlaceOrder {
		e.met.OrdersReceived.Inc()
	}

	snapshot := e.mkt.Clone()

	result, err := e.dispatch(event)
	if err == nil {
		err = e.mkt.BillFee(event.Portfolio, e.fee)
	}
	if err != nil {
		e.mkt = snapshot
		kind, _ := marketerr.KindOf(err)
		logEvent := e.log.Info()
		if kind == marketerr.InvalidState {
			logEvent = e.log.Error()
		}
		logEvent.Str("event", event.Kind.String()).Str("error", kind.String()).Msg("event rejected")
		return nil, err
	}

	switch event.Kind {
	case EventCancelOrder:
		e.met.OrdersCancelled.Inc()
	case EventPlaceOrder:
		if len(result.Trades) > 0 {
			e.met.OrdersMatched.Inc()
		}
		e.met.TradesExecuted.Add(float64(len(result.Trades)))
	}
	e.met.OrdersResting.Set(e.restingCount())

	e.log.Info().Str("event", event.Kind.String()).Int("trades", len(result.Trades)).Msg("event applied")
	return result, nil
}

func (e *Engine) dispatch(event Event) (*Result, error) {
	switch event.Kind {
	case EventPlaceOrder:
		o, err := order.New(event.Portfolio, event.Asset, event.Side, event.Mode, event.Quantity, event.Expires)
		if err != nil {
			return nil, err
		}
		trades, err := e.mkt.FillOrder(o, time.Now())
		if err != nil {
			return nil, err
		}
		return &Result{OrderID: o.ID, Trades: trades}, nil
	case EventCancelOrder:
		if err := e.mkt.CancelOrder(event.Portfolio, event.Order, event.Asset, time.Now()); err != nil {
			return nil, err
		}
		return &Result{}, nil
	default:
		return nil, marketerr.New(marketerr.InvalidState)
	}
}

func (e *Engine) restingCount() float64 {
	var total int
	for _, b := range e.mkt.Books {
		buys, sells := b.Sides()
		total += len(buys) + len(sells)
	}
	return float64(total)
}

// Read runs fn with the read lock held, for query-side access to the
// market without blocking other concurrent readers.
func (e *Engine) Read(fn func(*market.Market)) {
	_ = e.ReadContext(context.Background(), fn)
}

// ReadContext is Read with a context-bounded wait for the lock.
func (e *Engine) ReadContext(ctx context.Context, fn func(*market.Market)) error {
	if err := e.mu.rLockContext(ctx); err != nil {
		return err
	}
	defer e.mu.RUnlock()
	fn(e.mkt)
	return nil
}

func (k EventKind) String() string {
	if k == EventCancelOrder {
		return "CancelOrder"
	}
	return "PlaceOrder"
}
