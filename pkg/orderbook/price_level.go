package orderbook

import "github.com/gammazero/deque"

// priceLevel owns the FIFO queue of orders resting at one exact price and a
// cached sum of their remaining volumes. The cache and the queue move
// together; any divergence is reported, never repaired.
type priceLevel struct {
	price  float64
	volume int64
	orders deque.Deque[*Order]
}

func newPriceLevel(price float64) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) add(o *Order) error {
	if o.price != l.price {
		return errPriceMismatch
	}
	l.orders.PushBack(o)
	l.volume += o.remaining
	return nil
}

func (l *priceLevel) front() *Order {
	if l.orders.Len() == 0 {
		return nil
	}
	return l.orders.Front()
}

// fillFront reduces the front order's remaining volume in place. The order
// keeps its queue position: a partial fill does not displace it.
func (l *priceLevel) fillFront(qty int64) error {
	o := l.front()
	if o == nil || qty >= o.remaining {
		return errVolumeMismatch
	}
	if err := o.fill(qty); err != nil {
		return err
	}
	l.volume -= qty
	return nil
}

// removeFront pops the fully-filled front order off the level. Caller has
// already zeroed its remaining volume via the trade.
func (l *priceLevel) removeFront(qty int64) (*Order, error) {
	o := l.front()
	if o == nil || qty != o.remaining {
		return nil, errVolumeMismatch
	}
	if err := o.fill(qty); err != nil {
		return nil, err
	}
	l.orders.PopFront()
	l.volume -= qty
	if l.orders.Len() == 0 && l.volume != 0 {
		return nil, errVolumeMismatch
	}
	return o, nil
}

// remove takes a resting order out of the queue wherever it sits (cancel
// path). Returns false if the order is not queued at this level.
func (l *priceLevel) remove(o *Order) (bool, error) {
	idx := l.orders.Index(func(queued *Order) bool { return queued == o })
	if idx < 0 {
		return false, nil
	}
	l.orders.Remove(idx)
	l.volume -= o.remaining
	if l.volume < 0 {
		return false, errVolumeMismatch
	}
	return true, nil
}

func (l *priceLevel) empty() bool {
	return l.orders.Len() == 0
}
