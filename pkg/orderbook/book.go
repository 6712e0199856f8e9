package orderbook

import (
	"fmt"
	"sync"
)

// instrumentBook is one instrument's bid/ask side pair. Every operation on
// it, matching included, runs as a single critical section under mu: the
// multi-step mutation sequences in place and cancel must never interleave.
// Books for different instruments share nothing and proceed in parallel.
type instrumentBook struct {
	symbol string

	bids *bookSide
	asks *bookSide

	lastTrade    float64
	hasLastTrade bool

	// halted is set on the first detected invariant violation and never
	// cleared; every subsequent operation fails with it.
	halted error

	mu sync.Mutex
}

func newInstrumentBook(symbol string) *instrumentBook {
	return &instrumentBook{
		symbol: symbol,
		bids:   newBookSide(BUY),
		asks:   newBookSide(SELL),
	}
}

func (b *instrumentBook) sideFor(side Side) *bookSide {
	if side == BUY {
		return b.bids
	}
	return b.asks
}

func (b *instrumentBook) halt(cause error) error {
	b.halted = fmt.Errorf("%w: %s: %v", ErrBookHalted, b.symbol, cause)
	return b.halted
}

// place crosses the incoming order against opposing liquidity and applies
// the order type's remainder policy. The directory is updated inside the
// critical section: fully consumed resting ids leave it and a resting
// remainder enters it before the lock is released, so a concurrent cancel
// or aggressor can never observe the book and the directory disagreeing.
func (b *instrumentBook) place(order *Order, typ OrderType, directory *sync.Map) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted != nil {
		return Outcome{}, b.halted
	}
	if order.remaining <= 0 {
		return Outcome{}, errInvalidOrder
	}

	counter := b.sideFor(order.side.Opposite())

	var crossable int64
	switch typ {
	case MKT:
		crossable = counter.totalVolume()
	default:
		crossable = counter.crossableVolume(order.price)
	}

	if typ == FOK && crossable < order.remaining {
		// no mutation has happened; rejection leaves the book untouched
		return Outcome{Status: StatusRejected}, nil
	}

	trades, removed, err := b.cross(order, counter, crossable)
	if err != nil {
		return Outcome{}, b.halt(err)
	}
	for _, id := range removed {
		directory.Delete(id)
	}

	if order.remaining == 0 {
		return Outcome{Status: StatusFilled, Trades: trades}, nil
	}

	switch typ {
	case GTC:
		if err := b.sideFor(order.side).add(order); err != nil {
			return Outcome{}, b.halt(err)
		}
		directory.Store(order.id, order)
		return Outcome{Status: StatusResting, OrderID: order.id, Trades: trades}, nil
	case MKT:
		return Outcome{Status: StatusPartiallyFilled, Trades: trades, Remaining: order.remaining}, nil
	default:
		// FOK passed the pre-check; an incomplete fill means the accounting lied
		return Outcome{}, b.halt(errShortFill)
	}
}

// cross consumes the best opposing levels in price order, FIFO within each
// level, until the aggressor is filled or the eligible volume runs out.
func (b *instrumentBook) cross(order *Order, counter *bookSide, crossable int64) ([]Trade, []string, error) {
	var trades []Trade
	var removed []string

	for order.remaining > 0 && crossable > 0 {
		best, err := counter.bestLevel()
		if err != nil {
			return nil, nil, err
		}
		if best == nil {
			return nil, nil, errLevelDrained
		}

		matchQty := order.remaining
		if resting := best.front(); resting.remaining < matchQty {
			matchQty = resting.remaining
		}

		resting, consumed, err := counter.fillBest(matchQty)
		if err != nil {
			return nil, nil, err
		}
		if err := order.fill(matchQty); err != nil {
			return nil, nil, err
		}

		// price discovery follows the resting order, not the aggressor's limit
		b.lastTrade = resting.price
		b.hasLastTrade = true
		trades = append(trades, newTrade(order, resting, resting.price, matchQty))

		if consumed {
			removed = append(removed, resting.id)
			crossable -= matchQty
		}
	}

	return trades, removed, nil
}

func (b *instrumentBook) cancel(order *Order, directory *sync.Map) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted != nil {
		return false, b.halted
	}

	ok, err := b.sideFor(order.side).remove(order)
	if err != nil {
		return false, b.halt(err)
	}
	if ok {
		directory.Delete(order.id)
	}
	return ok, nil
}

func (b *instrumentBook) bestPrice(side Side) (float64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted != nil {
		return 0, false, b.halted
	}
	price, ok, err := b.sideFor(side).bestPrice()
	if err != nil {
		return 0, false, b.halt(err)
	}
	return price, ok, nil
}

func (b *instrumentBook) volumeAtPrice(side Side, price float64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted != nil {
		return 0, b.halted
	}
	return b.sideFor(side).volumeAt(price), nil
}

func (b *instrumentBook) lastTradePrice() (float64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted != nil {
		return 0, false, b.halted
	}
	return b.lastTrade, b.hasLastTrade, nil
}
