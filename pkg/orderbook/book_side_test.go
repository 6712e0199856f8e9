package orderbook

import "testing"

func TestBestLevelPurgesStaleHeapEntries(t *testing.T) {
	s := newBookSide(SELL)

	o := NewOrder("u", "ABC", SELL, 100.0, 10)
	if err := s.add(o); err != nil {
		t.Fatalf("add: %v", err)
	}

	// drain the level through matching; the heap entry goes stale
	if _, consumed, err := s.fillBest(10); err != nil || !consumed {
		t.Fatalf("fillBest: consumed=%v err=%v", consumed, err)
	}

	level, err := s.bestLevel()
	if err != nil {
		t.Fatalf("bestLevel after drain: %v", err)
	}
	if level != nil {
		t.Fatalf("expected no best level, got price %v", level.price)
	}
	if s.totalVolume() != 0 {
		t.Errorf("expected zero side volume, got %d", s.totalVolume())
	}
}

func TestLevelRecreatedAfterDrain(t *testing.T) {
	s := newBookSide(BUY)

	first := NewOrder("u1", "ABC", BUY, 50.0, 5)
	if err := s.add(first); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := s.fillBest(5); err != nil {
		t.Fatalf("fillBest: %v", err)
	}

	// same price again while its old heap entry may still linger
	second := NewOrder("u2", "ABC", BUY, 50.0, 7)
	if err := s.add(second); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	price, ok, err := s.bestPrice()
	if err != nil || !ok || price != 50.0 {
		t.Fatalf("expected best 50.0, got %v (ok=%v err=%v)", price, ok, err)
	}
	if s.volumeAt(50.0) != 7 {
		t.Errorf("expected level volume 7, got %d", s.volumeAt(50.0))
	}
}

func TestCrossableVolumeRespectsLimit(t *testing.T) {
	asks := newBookSide(SELL)
	for _, lv := range []struct {
		price float64
		vol   int64
	}{{100.0, 10}, {101.0, 20}, {105.0, 40}} {
		if err := asks.add(NewOrder("u", "ABC", SELL, lv.price, lv.vol)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if got := asks.crossableVolume(101.0); got != 30 {
		t.Errorf("buy limit 101: expected crossable 30, got %d", got)
	}
	if got := asks.crossableVolume(99.0); got != 0 {
		t.Errorf("buy limit 99: expected crossable 0, got %d", got)
	}
	if got := asks.crossableVolume(200.0); got != 70 {
		t.Errorf("buy limit 200: expected crossable 70, got %d", got)
	}

	bids := newBookSide(BUY)
	if err := bids.add(NewOrder("u", "ABC", BUY, 100.0, 15)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := bids.crossableVolume(100.0); got != 15 {
		t.Errorf("sell limit 100: expected crossable 15, got %d", got)
	}
	if got := bids.crossableVolume(101.0); got != 0 {
		t.Errorf("sell limit 101: expected crossable 0, got %d", got)
	}
}

func TestPriceLevelRejectsWrongPrice(t *testing.T) {
	l := newPriceLevel(100.0)
	if err := l.add(NewOrder("u", "ABC", BUY, 101.0, 5)); err == nil {
		t.Error("expected price mismatch error")
	}
}
