package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	kafka_wrapper "github.com/joripage/matching-engine/pkg/infra/kafka"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
)

type AppConfig struct {
	ServiceName string `yaml:"service_name"`
	LogLevel    string `yaml:"log_level"`

	Dispatch   DispatchConfig `yaml:"dispatch"`
	TradeTopic string         `yaml:"trade_topic"`

	FixConfigFilepath string `yaml:"fix_config_filepath"`

	JournalDB     *postgres_wrapper.PostgresConfig `yaml:"journal_db"`
	Redis         *redis_wrapper.RedisConfig       `yaml:"redis"`
	KafkaProducer *kafka_wrapper.ProducerConfig    `yaml:"kafka_producer"`
	KafkaConsumer *kafka_wrapper.ConsumerConfig    `yaml:"kafka_consumer"`
}

type DispatchConfig struct {
	Shards    int `yaml:"shards"`
	QueueSize int `yaml:"queue_size"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
