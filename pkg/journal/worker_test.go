package journal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafka_wrapper "github.com/joripage/matching-engine/pkg/infra/kafka"
	"github.com/joripage/matching-engine/pkg/tradesink"
)

type stubRepo struct {
	records []*TradeRecord
	err     error
}

func (s *stubRepo) Create(_ context.Context, record *TradeRecord) (*TradeRecord, error) {
	s.records = append(s.records, record)
	return record, s.err
}

func (s *stubRepo) BulkCreate(_ context.Context, records []*TradeRecord) ([]*TradeRecord, error) {
	s.records = append(s.records, records...)
	return records, s.err
}

func eventMessage(t *testing.T, ev tradesink.TradeEvent) kafka_wrapper.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka_wrapper.Message{Topic: "trades", Key: []byte(ev.Symbol), Value: b}
}

func TestWorkerPersistsBatch(t *testing.T) {
	repo := &stubRepo{}
	w := NewWorker(nil, repo)

	ev1 := tradesink.TradeEvent{
		TradeID: "t-1", Symbol: "AAPL", Price: 100, Volume: 10,
		BuyOrderID: "b1", BuyUserID: "alice", SellOrderID: "s1", SellUserID: "bob",
		ExecutedAt: time.Now().UTC(),
	}
	ev2 := ev1
	ev2.TradeID = "t-2"
	ev2.Volume = 5

	msgs := []kafka_wrapper.Message{eventMessage(t, ev1), eventMessage(t, ev2)}
	if err := w.handleBatch(context.Background(), msgs); err != nil {
		t.Fatalf("handleBatch: %v", err)
	}

	if len(repo.records) != 2 {
		t.Fatalf("got %d records, want 2", len(repo.records))
	}
	got := repo.records[0]
	if got.TradeID != "t-1" || got.Symbol != "AAPL" || got.Price != 100 || got.Volume != 10 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.BuyUserID != "alice" || got.SellUserID != "bob" {
		t.Errorf("unexpected parties: %+v", got)
	}
}

func TestWorkerSkipsMalformedEvents(t *testing.T) {
	repo := &stubRepo{}
	w := NewWorker(nil, repo)

	good := eventMessage(t, tradesink.TradeEvent{TradeID: "t-1", Symbol: "AAPL", Price: 1, Volume: 1})
	bad := kafka_wrapper.Message{Topic: "trades", Value: []byte("not json")}

	if err := w.handleBatch(context.Background(), []kafka_wrapper.Message{bad, good}); err != nil {
		t.Fatalf("handleBatch: %v", err)
	}
	if len(repo.records) != 1 {
		t.Fatalf("got %d records, want 1", len(repo.records))
	}
	if repo.records[0].TradeID != "t-1" {
		t.Errorf("kept wrong record: %+v", repo.records[0])
	}
}

func TestWorkerPropagatesRepoError(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	w := NewWorker(nil, repo)

	msg := eventMessage(t, tradesink.TradeEvent{TradeID: "t-1", Symbol: "AAPL", Price: 1, Volume: 1})
	if err := w.handleBatch(context.Background(), []kafka_wrapper.Message{msg}); err == nil {
		t.Fatal("expected error from repo")
	}
}

func TestWorkerEmptyBatchNoInsert(t *testing.T) {
	repo := &stubRepo{}
	w := NewWorker(nil, repo)

	bad := kafka_wrapper.Message{Topic: "trades", Value: []byte("{")}
	if err := w.handleBatch(context.Background(), []kafka_wrapper.Message{bad}); err != nil {
		t.Fatalf("handleBatch: %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("got %d records, want 0", len(repo.records))
	}
}
