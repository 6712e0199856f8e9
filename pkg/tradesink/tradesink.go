// Package tradesink fans executed trades out to reporting backends. The
// engine hands trades over and moves on: reporting is best effort and sits
// outside the book's consistency boundary. A slow or failing sink costs log
// lines, never a match.
package tradesink

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Sink receives one executed trade leg, append-only.
type Sink interface {
	Report(trade orderbook.Trade) error
	Close() error
}

// TradeEvent is the wire form of a trade leg shared by the kafka feed and
// the journal worker.
type TradeEvent struct {
	TradeID     string    `json:"trade_id"`
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	Volume      int64     `json:"volume"`
	BuyOrderID  string    `json:"buy_order_id"`
	BuyUserID   string    `json:"buy_user_id"`
	SellOrderID string    `json:"sell_order_id"`
	SellUserID  string    `json:"sell_user_id"`
	ExecutedAt  time.Time `json:"executed_at"`
}

func NewTradeEvent(t orderbook.Trade) TradeEvent {
	return TradeEvent{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		Price:       t.Price,
		Volume:      t.Volume,
		BuyOrderID:  t.BuyOrderID,
		BuyUserID:   t.BuyUserID,
		SellOrderID: t.SellOrderID,
		SellUserID:  t.SellUserID,
		ExecutedAt:  t.ExecutedAt,
	}
}

// Reporter decouples the matching path from the sinks with a buffered
// queue drained by one goroutine. When the buffer is full the trade is
// dropped and counted; blocking the engine is never an option.
type Reporter struct {
	sinks   []Sink
	queue   chan orderbook.Trade
	stopped chan struct{}

	dropped int64
}

func NewReporter(buffer int, sinks ...Sink) *Reporter {
	if buffer <= 0 {
		buffer = 10_000
	}
	r := &Reporter{
		sinks:   sinks,
		queue:   make(chan orderbook.Trade, buffer),
		stopped: make(chan struct{}),
	}
	go r.run()
	return r
}

// Callback returns the function to register on the matching engine.
func (r *Reporter) Callback() func([]orderbook.Trade) {
	return func(trades []orderbook.Trade) {
		for _, t := range trades {
			select {
			case r.queue <- t:
			default:
				atomic.AddInt64(&r.dropped, 1)
				zap.S().Warnw("trade report dropped, queue full", "trade_id", t.TradeID, "symbol", t.Symbol)
			}
		}
	}
}

// Dropped reports how many trades were discarded on a saturated queue.
func (r *Reporter) Dropped() int64 {
	return atomic.LoadInt64(&r.dropped)
}

func (r *Reporter) run() {
	defer close(r.stopped)
	for t := range r.queue {
		for _, sink := range r.sinks {
			if err := sink.Report(t); err != nil {
				zap.S().Warnw("trade sink error", "trade_id", t.TradeID, "err", err)
			}
		}
	}
}

// Close drains the queue, then closes every sink.
func (r *Reporter) Close() error {
	close(r.queue)
	<-r.stopped
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil {
			zap.S().Warnf("trade sink close error: %v", err)
		}
	}
	return nil
}

// LogSink writes each trade leg as a structured log line, the flat-file
// trade log's structured successor.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Report(t orderbook.Trade) error {
	zap.S().Infow("trade",
		"trade_id", t.TradeID,
		"symbol", t.Symbol,
		"price", t.Price,
		"volume", t.Volume,
		"buy_order_id", t.BuyOrderID,
		"buy_user_id", t.BuyUserID,
		"sell_order_id", t.SellOrderID,
		"sell_user_id", t.SellUserID,
		"executed_at", t.ExecutedAt,
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
