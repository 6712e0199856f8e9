package orderbook

import (
	"time"

	"github.com/google/uuid"
)

// Trade is one execution leg, priced at the resting order's level.
type Trade struct {
	TradeID     string
	Symbol      string
	Price       float64
	Volume      int64
	BuyOrderID  string
	BuyUserID   string
	SellOrderID string
	SellUserID  string
	ExecutedAt  time.Time
}

func newTrade(aggressor, resting *Order, price float64, volume int64) Trade {
	t := Trade{
		TradeID:    uuid.NewString(),
		Symbol:     aggressor.symbol,
		Price:      price,
		Volume:     volume,
		ExecutedAt: time.Now(),
	}
	buyer, seller := aggressor, resting
	if aggressor.side == SELL {
		buyer, seller = resting, aggressor
	}
	t.BuyOrderID = buyer.id
	t.BuyUserID = buyer.userID
	t.SellOrderID = seller.id
	t.SellUserID = seller.userID
	return t
}

type OutcomeStatus string

const (
	// StatusFilled: the incoming order crossed completely; nothing rested.
	StatusFilled OutcomeStatus = "Filled"
	// StatusResting: the unfilled remainder was placed in the book.
	StatusResting OutcomeStatus = "Resting"
	// StatusRejected: fill-or-kill with insufficient crossable volume; the
	// book was not touched.
	StatusRejected OutcomeStatus = "Rejected"
	// StatusPartiallyFilled: a market order exhausted opposing liquidity;
	// the remainder was discarded, not rested.
	StatusPartiallyFilled OutcomeStatus = "PartiallyFilled"
)

type Outcome struct {
	Status  OutcomeStatus
	OrderID string // set when resting
	Trades  []Trade
	// Remaining is the discarded volume of a partially filled market order.
	Remaining int64
}
