package orderbook

import "sync"

// MatchingEngine is the venue's public contract: order intake, cancellation
// and the read-only book queries. It keys instrument books lazily by symbol
// and tracks every resting order in a directory for O(1) cancel lookup.
//
// Trade callbacks run outside the instrument lock, after the mutation
// sequence has committed. Sinks that need durability hang off a callback;
// the engine itself never waits on them.
type MatchingEngine struct {
	books  sync.Map // symbol -> *instrumentBook
	orders sync.Map // orderID -> *Order

	cbMu      sync.RWMutex
	callbacks []func([]Trade)
}

func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{}
}

func (e *MatchingEngine) RegisterTradeCallback(fn func([]Trade)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.callbacks = append(e.callbacks, fn)
}

// PlaceOrder submits an order for userID and returns the business outcome.
// Rejection and partial fill are outcomes, not errors; the error return is
// reserved for invalid input and halted instruments.
func (e *MatchingEngine) PlaceOrder(userID, symbol string, price float64, volume int64, side Side, typ OrderType) (Outcome, error) {
	if volume <= 0 {
		return Outcome{}, errInvalidOrder
	}

	book := e.getOrCreateBook(symbol)
	order := NewOrder(userID, symbol, side, price, volume)

	outcome, err := book.place(order, typ, &e.orders)
	if err != nil {
		return Outcome{}, err
	}

	if len(outcome.Trades) > 0 {
		e.publish(outcome.Trades)
	}
	return outcome, nil
}

// CancelOrder removes a resting order. An unknown or already-resolved id
// reports false; cancelling twice is a defined, idempotent outcome.
func (e *MatchingEngine) CancelOrder(orderID string) (bool, error) {
	val, ok := e.orders.Load(orderID)
	if !ok {
		return false, nil
	}
	order := val.(*Order)

	book := e.getOrCreateBook(order.symbol)
	removed, err := book.cancel(order, &e.orders)
	if err != nil {
		return false, err
	}
	return removed, nil
}

// BestPrice reports the extremal resting price for a side, with ok=false
// when the side holds no liquidity.
func (e *MatchingEngine) BestPrice(symbol string, side Side) (float64, bool, error) {
	book, ok := e.loadBook(symbol)
	if !ok {
		return 0, false, nil
	}
	return book.bestPrice(side)
}

// VolumeAtPrice reports the aggregate resting volume at one exact price
// level; a missing level is zero, not an error.
func (e *MatchingEngine) VolumeAtPrice(symbol string, side Side, price float64) (int64, error) {
	book, ok := e.loadBook(symbol)
	if !ok {
		return 0, nil
	}
	return book.volumeAtPrice(side, price)
}

// LastTradePrice reports the most recent execution price for the
// instrument, with ok=false before the first trade.
func (e *MatchingEngine) LastTradePrice(symbol string) (float64, bool, error) {
	book, ok := e.loadBook(symbol)
	if !ok {
		return 0, false, nil
	}
	return book.lastTradePrice()
}

func (e *MatchingEngine) publish(trades []Trade) {
	e.cbMu.RLock()
	defer e.cbMu.RUnlock()
	for _, cb := range e.callbacks {
		cb(trades)
	}
}

func (e *MatchingEngine) loadBook(symbol string) (*instrumentBook, bool) {
	val, ok := e.books.Load(symbol)
	if !ok {
		return nil, false
	}
	return val.(*instrumentBook), true
}

func (e *MatchingEngine) getOrCreateBook(symbol string) *instrumentBook {
	if val, ok := e.books.Load(symbol); ok {
		return val.(*instrumentBook)
	}
	actual, _ := e.books.LoadOrStore(symbol, newInstrumentBook(symbol))
	return actual.(*instrumentBook)
}
