package tradesink

import (
	"context"
	"encoding/json"

	kafka_wrapper "github.com/joripage/matching-engine/pkg/infra/kafka"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// KafkaSink publishes each trade leg to the venue's trade feed topic,
// keyed by symbol so per-instrument ordering survives partitioning.
type KafkaSink struct {
	producer *kafka_wrapper.Producer
	topic    string
}

func NewKafkaSink(producer *kafka_wrapper.Producer, topic string) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		topic:    topic,
	}
}

func (s *KafkaSink) Report(t orderbook.Trade) error {
	payload, err := json.Marshal(NewTradeEvent(t))
	if err != nil {
		return err
	}
	return s.producer.Publish(context.Background(), s.topic, []byte(t.Symbol), payload)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
