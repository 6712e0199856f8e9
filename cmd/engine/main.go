package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/dispatch"
	"github.com/joripage/matching-engine/pkg/fixgateway"
	kafka_wrapper "github.com/joripage/matching-engine/pkg/infra/kafka"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/marketdata"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/tradesink"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

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

	engine := orderbook.NewMatchingEngine()

	sinks := []tradesink.Sink{tradesink.NewLogSink()}

	if cfg.KafkaProducer != nil {
		producer := kafka_wrapper.NewProducer(*cfg.KafkaProducer)
		sinks = append(sinks, tradesink.NewKafkaSink(producer, cfg.TradeTopic))
	}

	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Errorf("init redis fail with err: %v", err)
			panic(err)
		}
		sinks = append(sinks, marketdata.NewPublisher(redisClient, engine))
	}

	reporter := tradesink.NewReporter(0, sinks...)
	engine.RegisterTradeCallback(reporter.Callback())

	dispatcher := dispatch.NewDispatcher(engine, dispatch.Config{
		Shards:    cfg.Dispatch.Shards,
		QueueSize: cfg.Dispatch.QueueSize,
	})
	dispatcher.Start()

	gateway := fixgateway.NewGateway(&fixgateway.GatewayConfig{
		ConfigFilepath: cfg.FixConfigFilepath,
	}, dispatcher)
	if err := gateway.Start(ctx); err != nil {
		panic(err)
	}

	fmt.Println("Matching engine started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	gateway.Stop()
	if err := reporter.Close(); err != nil {
		zap.S().Warnf("close reporter err=%v", err)
	}

	fmt.Println("Exited cleanly.")
}
