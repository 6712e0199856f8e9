package orderbook

import "container/heap"

// bookSide holds every price level of one side of one instrument: a
// price-keyed map of levels, a heap yielding the extremal price, and the
// side's aggregate resting volume.
//
// The heap is cleaned lazily. A level emptied by matching or cancellation is
// deleted from the map immediately; its heap entry stays behind until
// bestLevel skips past it. No price is ever reported as best without a
// live, positive-volume level backing it.
type bookSide struct {
	side   Side
	levels map[float64]*priceLevel
	heap   *priceHeap
	volume int64
}

func newBookSide(side Side) *bookSide {
	less := func(i, j float64) bool { return i < j } // min-heap for asks
	if side == BUY {
		less = func(i, j float64) bool { return i > j } // max-heap for bids
	}
	return &bookSide{
		side:   side,
		levels: make(map[float64]*priceLevel),
		heap:   newPriceHeap(less),
	}
}

func (s *bookSide) add(o *Order) error {
	level := s.levels[o.price]
	if level == nil {
		level = newPriceLevel(o.price)
		s.levels[o.price] = level
		heap.Push(s.heap, o.price)
	}
	if err := level.add(o); err != nil {
		return err
	}
	s.volume += o.remaining
	return nil
}

// bestLevel purges stale heap entries and returns the extremal live level,
// or nil when the side holds no liquidity.
func (s *bookSide) bestLevel() (*priceLevel, error) {
	for {
		price, ok := s.heap.Peek()
		if !ok {
			return nil, nil
		}
		level, live := s.levels[price]
		if !live {
			heap.Pop(s.heap)
			continue
		}
		if level.empty() || level.volume <= 0 {
			// an emptied level must have been dropped from the map already
			return nil, errVolumeMismatch
		}
		return level, nil
	}
}

func (s *bookSide) bestPrice() (float64, bool, error) {
	level, err := s.bestLevel()
	if err != nil || level == nil {
		return 0, false, err
	}
	return level.price, true, nil
}

func (s *bookSide) volumeAt(price float64) int64 {
	level := s.levels[price]
	if level == nil {
		return 0
	}
	return level.volume
}

func (s *bookSide) totalVolume() int64 {
	return s.volume
}

// crossableVolume sums the resting volume an aggressor with the given limit
// could execute against: asks priced at or below the limit, bids priced at
// or above it.
func (s *bookSide) crossableVolume(limit float64) int64 {
	var total int64
	for price, level := range s.levels {
		if s.side == SELL && price <= limit {
			total += level.volume
		} else if s.side == BUY && price >= limit {
			total += level.volume
		}
	}
	return total
}

// fillBest executes qty against the front order of the best level and
// reports the resting order hit plus whether it was fully consumed.
func (s *bookSide) fillBest(qty int64) (*Order, bool, error) {
	level, err := s.bestLevel()
	if err != nil {
		return nil, false, err
	}
	if level == nil {
		return nil, false, errLevelDrained
	}
	resting := level.front()
	if qty < resting.remaining {
		if err := level.fillFront(qty); err != nil {
			return nil, false, err
		}
		s.volume -= qty
		return resting, false, nil
	}

	removed, err := level.removeFront(resting.remaining)
	if err != nil {
		return nil, false, err
	}
	s.volume -= qty
	if level.empty() {
		delete(s.levels, level.price)
	}
	return removed, true, nil
}

// remove takes a resting order out of its level (cancel path). Levels left
// empty are dropped from the map so they can never be reported as best.
func (s *bookSide) remove(o *Order) (bool, error) {
	level := s.levels[o.price]
	if level == nil {
		return false, nil
	}
	removed, err := level.remove(o)
	if err != nil || !removed {
		return false, err
	}
	s.volume -= o.remaining
	if s.volume < 0 {
		return false, errVolumeMismatch
	}
	if level.empty() {
		if level.volume != 0 {
			return false, errVolumeMismatch
		}
		delete(s.levels, level.price)
	}
	return true, nil
}
