package tradesink

import (
	"sync"
	"testing"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

type captureSink struct {
	mu     sync.Mutex
	trades []orderbook.Trade
}

func (s *captureSink) Report(t orderbook.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, t)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}

func TestReporterDeliversEveryLeg(t *testing.T) {
	sink := &captureSink{}
	reporter := NewReporter(64, sink)

	engine := orderbook.NewMatchingEngine()
	engine.RegisterTradeCallback(reporter.Callback())

	if _, err := engine.PlaceOrder("s1", "ABC", 100.0, 5, orderbook.SELL, orderbook.GTC); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.PlaceOrder("s2", "ABC", 100.0, 5, orderbook.SELL, orderbook.GTC); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.PlaceOrder("b", "ABC", 100.0, 10, orderbook.BUY, orderbook.GTC); err != nil {
		t.Fatal(err)
	}

	reporter.Close()

	if sink.count() != 2 {
		t.Fatalf("expected 2 trade legs delivered, got %d", sink.count())
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, tr := range sink.trades {
		if tr.BuyUserID != "b" || tr.Symbol != "ABC" || tr.Volume != 5 {
			t.Errorf("unexpected trade record: %+v", tr)
		}
	}
}

func TestReporterDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	slow := &slowSink{release: block}
	reporter := NewReporter(1, slow)

	cb := reporter.Callback()
	trades := make([]orderbook.Trade, 10)
	for i := range trades {
		trades[i] = orderbook.Trade{TradeID: "t", Symbol: "ABC", Volume: 1}
	}

	// the sink is stuck: the queue fills and excess reports are dropped,
	// but the callback itself never blocks
	done := make(chan struct{})
	go func() {
		cb(trades)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback blocked on a saturated queue")
	}

	close(block)
	reporter.Close()
}

type slowSink struct {
	release chan struct{}
}

func (s *slowSink) Report(orderbook.Trade) error {
	<-s.release
	return nil
}

func (s *slowSink) Close() error { return nil }

func TestTradeEventCarriesFullTuple(t *testing.T) {
	tr := orderbook.Trade{
		TradeID:     "id",
		Symbol:      "ABC",
		Price:       101.5,
		Volume:      7,
		BuyOrderID:  "bo",
		BuyUserID:   "bu",
		SellOrderID: "so",
		SellUserID:  "su",
		ExecutedAt:  time.Now(),
	}
	ev := NewTradeEvent(tr)
	if ev.TradeID != tr.TradeID || ev.Symbol != tr.Symbol || ev.Price != tr.Price ||
		ev.Volume != tr.Volume || ev.BuyOrderID != tr.BuyOrderID || ev.BuyUserID != tr.BuyUserID ||
		ev.SellOrderID != tr.SellOrderID || ev.SellUserID != tr.SellUserID || !ev.ExecutedAt.Equal(tr.ExecutedAt) {
		t.Errorf("trade event lost fields: %+v vs %+v", ev, tr)
	}
}
