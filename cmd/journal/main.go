package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	kafka_wrapper "github.com/joripage/matching-engine/pkg/infra/kafka"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	"github.com/joripage/matching-engine/pkg/journal"
	"github.com/joripage/matching-engine/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel))

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.JournalDB)

	repo := journal.NewTradeSQLRepo(db)
	consumer := kafka_wrapper.NewConsumerGroup(*cfg.KafkaConsumer)
	worker := journal.NewWorker(consumer, repo)

	go func() {
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			zap.S().Errorf("journal worker stopped with err: %v", err)
		}
	}()

	fmt.Println("Journal worker started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	if err := worker.Stop(); err != nil {
		zap.S().Warnf("stop worker err=%v", err)
	}

	fmt.Println("Exited cleanly.")
}
