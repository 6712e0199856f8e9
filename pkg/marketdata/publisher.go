// Package marketdata pushes post-trade market state into redis: a pub/sub
// tick stream per symbol and a hash snapshot with last trade and top of book.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/tradesink"
)

const (
	tickChannelFormat = "marketdata.ticks.%s"
	snapshotKeyFormat = "marketdata.snapshot.%s"
)

// Tick is the payload published on a symbol's tick channel after each trade.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	BestBid   float64   `json:"best_bid,omitempty"`
	BestAsk   float64   `json:"best_ask,omitempty"`
	TradeTime time.Time `json:"trade_time"`
}

// Publisher implements tradesink.Sink so it plugs into the same reporting
// pipeline as the kafka feed. Top of book is read from the engine at publish
// time, so a tick's best bid/ask may already reflect later orders; the tick
// price is authoritative, the quote is advisory.
type Publisher struct {
	client  *redis.Client
	engine  *orderbook.MatchingEngine
	timeout time.Duration
}

var _ tradesink.Sink = (*Publisher)(nil)

func NewPublisher(client *redis.Client, engine *orderbook.MatchingEngine) *Publisher {
	return &Publisher{
		client:  client,
		engine:  engine,
		timeout: 2 * time.Second,
	}
}

func (p *Publisher) Report(trade orderbook.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	tick := Tick{
		Symbol:    trade.Symbol,
		Price:     trade.Price,
		Volume:    trade.Volume,
		TradeTime: trade.ExecutedAt,
	}
	if bid, ok, err := p.engine.BestPrice(trade.Symbol, orderbook.BUY); err == nil && ok {
		tick.BestBid = bid
	}
	if ask, ok, err := p.engine.BestPrice(trade.Symbol, orderbook.SELL); err == nil && ok {
		tick.BestAsk = ask
	}

	payload, err := json.Marshal(tick)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, fmt.Sprintf(tickChannelFormat, trade.Symbol), payload)
	pipe.HSet(ctx, fmt.Sprintf(snapshotKeyFormat, trade.Symbol), snapshotFields(tick)...)
	if _, err := pipe.Exec(ctx); err != nil {
		zap.S().Warnf("marketdata publish %s fail: %v", trade.Symbol, err)
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	return nil
}

func snapshotFields(tick Tick) []interface{} {
	return []interface{}{
		"last_price", tick.Price,
		"last_volume", tick.Volume,
		"best_bid", tick.BestBid,
		"best_ask", tick.BestAsk,
		"updated_at", tick.TradeTime.UnixNano(),
	}
}
