// Package kafka wraps segmentio/kafka-go with a fire-and-forget producer and
// a batch consumer group used by the trade feed and the journal worker.
package kafka

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
	Raw       kafkago.Message
}

type ProducerConfig struct {
	Brokers      []string `yaml:"brokers"`
	BatchSize    int      `yaml:"batch_size"`
	BatchBytes   int64    `yaml:"batch_bytes"`
	BatchTimeout time.Duration
}

type Producer struct {
	w *kafkago.Writer
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	wr := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Balancer:               &kafkago.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafkago.RequireNone,
		Async:                  true,
	}
	return &Producer{w: wr}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	return p.w.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.w.Close()
}

type ConsumerConfig struct {
	Brokers      []string `yaml:"brokers"`
	GroupID      string   `yaml:"group_id"`
	Topic        string   `yaml:"topic"`
	WorkerCount  int      `yaml:"worker_count"`
	MaxRetries   int      `yaml:"max_retries"`
	BatchSize    int      `yaml:"batch_size"`
	BatchTimeout time.Duration
	BackoffMin   time.Duration
	BackoffMax   time.Duration
}

// ConsumerGroup delivers message batches to a handler with bounded retries.
// A batch is committed once the handler accepts it or retries are exhausted.
type ConsumerGroup struct {
	r   *kafkago.Reader
	cfg ConsumerConfig
}

func NewConsumerGroup(cfg ConsumerConfig) *ConsumerGroup {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = 100 * time.Millisecond
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 10 * time.Second
	}

	rd := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})

	return &ConsumerGroup{r: rd, cfg: cfg}
}

func (cg *ConsumerGroup) Close() error {
	if cg == nil || cg.r == nil {
		return nil
	}
	return cg.r.Close()
}

// Run fetches messages, groups them into batches and hands each batch to
// handler on a worker goroutine. Blocks until ctx is cancelled and every
// worker has drained; no goroutine outlives the call.
func (cg *ConsumerGroup) Run(ctx context.Context, handler func(context.Context, []Message) error) error {
	if cg == nil || cg.r == nil {
		return errors.New("consumer not initialized")
	}

	batches := make(chan []kafkago.Message, cg.cfg.WorkerCount)

	go cg.readLoop(ctx, batches)

	var wg sync.WaitGroup
	for i := 0; i < cg.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ms := range batches {
				cg.handleBatch(ctx, ms, handler)
			}
		}()
	}
	wg.Wait()

	return ctx.Err()
}

func (cg *ConsumerGroup) readLoop(ctx context.Context, batches chan<- []kafkago.Message) {
	defer close(batches)

	var buf []kafkago.Message
	flush := func() {
		if len(buf) > 0 {
			batches <- buf
			buf = nil
		}
	}

	for {
		fetchCtx, cancel := context.WithTimeout(ctx, cg.cfg.BatchTimeout)
		m, err := cg.r.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				flush()
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				flush()
				continue
			}
			zap.S().Warnf("kafka fetch error: %v", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}

		buf = append(buf, m)
		if len(buf) >= cg.cfg.BatchSize {
			flush()
		}
	}
}

func (cg *ConsumerGroup) handleBatch(ctx context.Context, ms []kafkago.Message, handler func(context.Context, []Message) error) {
	wrapped := make([]Message, len(ms))
	for i, m := range ms {
		wrapped[i] = Message{
			Topic:     m.Topic,
			Partition: m.Partition,
			Offset:    m.Offset,
			Key:       m.Key,
			Value:     m.Value,
			Time:      m.Time,
			Raw:       m,
		}
	}

	var attempt int
	for {
		err := handler(ctx, wrapped)
		if err == nil {
			break
		}
		attempt++
		if attempt > cg.cfg.MaxRetries {
			zap.S().Errorw("kafka batch dropped after retries", "topic", cg.cfg.Topic, "size", len(ms), "err", err)
			break
		}
		select {
		case <-time.After(backoffDuration(cg.cfg.BackoffMin, cg.cfg.BackoffMax, attempt)):
		case <-ctx.Done():
			return
		}
	}
	if err := cg.r.CommitMessages(ctx, ms...); err != nil {
		zap.S().Warnf("kafka commit error: %v", err)
	}
}

func backoffDuration(min, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	pow := math.Pow(2, float64(attempt-1))
	d := time.Duration(float64(min) * pow)
	if d > max {
		d = max
	}
	if d > 0 {
		d = time.Duration(rand.Int63n(int64(d)))
	}
	return d
}
