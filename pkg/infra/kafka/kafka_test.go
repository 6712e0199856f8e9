package kafka

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunReturnsAfterCancelWithAllWorkersDrained(t *testing.T) {
	cg := NewConsumerGroup(ConsumerConfig{
		Brokers:      []string{"localhost:1"}, // unreachable on purpose
		GroupID:      "test-group",
		Topic:        "test-topic",
		WorkerCount:  3,
		BatchTimeout: 50 * time.Millisecond,
	})
	defer cg.Close() // nolint

	ctx, cancel := context.WithCancel(context.Background())

	returned := make(chan error, 1)
	go func() {
		returned <- cg.Run(ctx, func(context.Context, []Message) error { return nil })
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	// Run only returns once every worker goroutine has exited; a stuck
	// worker shows up here as a timeout
	select {
	case err := <-returned:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRejectsUninitializedConsumer(t *testing.T) {
	var cg *ConsumerGroup
	if err := cg.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil consumer")
	}
	if err := (&ConsumerGroup{}).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for consumer without reader")
	}
}
