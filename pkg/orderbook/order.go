package orderbook

import (
	"time"

	"github.com/google/uuid"
)

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

func (s Side) Opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

type OrderType string

const (
	// FOK fills completely against crossable liquidity or is rejected whole.
	FOK OrderType = "FOK"
	// GTC fills what crosses now and rests the remainder in the book.
	GTC OrderType = "GTC"
	// MKT crosses against all opposing liquidity regardless of price and
	// discards any remainder.
	MKT OrderType = "MKT"
)

// Order identity (id, user, symbol, side, price, creation time) is fixed at
// construction. Remaining volume is the only mutable field and only the
// matching path mutates it, under the instrument lock.
type Order struct {
	id        string
	userID    string
	symbol    string
	side      Side
	price     float64
	createdAt time.Time

	remaining int64
}

func NewOrder(userID, symbol string, side Side, price float64, volume int64) *Order {
	return &Order{
		id:        uuid.NewString(),
		userID:    userID,
		symbol:    symbol,
		side:      side,
		price:     price,
		createdAt: time.Now(),
		remaining: volume,
	}
}

func (o *Order) ID() string           { return o.id }
func (o *Order) UserID() string       { return o.userID }
func (o *Order) Symbol() string       { return o.symbol }
func (o *Order) Side() Side           { return o.side }
func (o *Order) Price() float64       { return o.price }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) Remaining() int64     { return o.remaining }

// fill reduces remaining volume by qty. Overfilling would drive remaining
// negative; that is a defect in the matching path, never clamped away.
func (o *Order) fill(qty int64) error {
	if qty <= 0 || qty > o.remaining {
		return errNegativeVolume
	}
	o.remaining -= qty
	return nil
}
