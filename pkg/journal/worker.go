// Package journal persists the kafka trade feed into postgres. It is the
// durable record of executions; the matching engine itself keeps nothing.
package journal

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	kafka_wrapper "github.com/joripage/matching-engine/pkg/infra/kafka"
	"github.com/joripage/matching-engine/pkg/tradesink"
)

type Worker struct {
	consumer *kafka_wrapper.ConsumerGroup
	repo     ITradeRepo
}

func NewWorker(consumer *kafka_wrapper.ConsumerGroup, repo ITradeRepo) *Worker {
	return &Worker{
		consumer: consumer,
		repo:     repo,
	}
}

// Start consumes trade batches until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	return w.consumer.Run(ctx, w.handleBatch)
}

func (w *Worker) Stop() error {
	return w.consumer.Close()
}

func (w *Worker) handleBatch(ctx context.Context, msgs []kafka_wrapper.Message) error {
	records := make([]*TradeRecord, 0, len(msgs))
	for _, m := range msgs {
		var ev tradesink.TradeEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			// A malformed event is unrecoverable; retrying the batch
			// would replay the same bytes.
			zap.S().Errorw("journal: dropping malformed trade event",
				"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "err", err)
			continue
		}
		records = append(records, recordFromEvent(ev))
	}
	if len(records) == 0 {
		return nil
	}

	if _, err := w.repo.BulkCreate(ctx, records); err != nil {
		zap.S().Errorw("journal: bulk insert failed", "count", len(records), "err", err)
		return err
	}
	zap.S().Debugw("journal: persisted trades", "count", len(records))
	return nil
}

func recordFromEvent(ev tradesink.TradeEvent) *TradeRecord {
	return &TradeRecord{
		TradeID:     ev.TradeID,
		Symbol:      ev.Symbol,
		Price:       ev.Price,
		Volume:      ev.Volume,
		BuyOrderID:  ev.BuyOrderID,
		BuyUserID:   ev.BuyUserID,
		SellOrderID: ev.SellOrderID,
		SellUserID:  ev.SellUserID,
		ExecutedAt:  ev.ExecutedAt,
	}
}
