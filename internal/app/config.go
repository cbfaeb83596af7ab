package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/fixtures"
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
)

// Переменные окружения, которыми переопределяется конфигурация.
const (
	EnvDBPath      = "POS_DB_PATH"
	EnvGRPCAddr    = "POS_GRPC_ADDR"
	EnvHTTPAddr    = "POS_HTTP_ADDR"
	EnvSeedLocale  = "POS_SEED_LOCALE"
	EnvSeedFile    = "POS_SEED_FILE"
	EnvLogLevel    = "POS_LOG_LEVEL"
	EnvCORSOrigins = "POS_CORS_ORIGINS"
	EnvKafkaTopic  = "POS_KAFKA_TOPIC"
	EnvKafka       = "KAFKA_BROKERS"
)

// Config описывает настройки запуска кассы.
type Config struct {
	DBPath     string
	GRPCAddr   string
	HTTPAddr   string
	SeedLocale string
	SeedFile   string
	LogLevel   log.Level

	CORSOrigins  []string
	KafkaBrokers []string
	KafkaTopic   string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		DBPath:          "data/pos.db",
		GRPCAddr:        "127.0.0.1:50051",
		HTTPAddr:        "127.0.0.1:8080",
		SeedLocale:      fixtures.DefaultLocale,
		LogLevel:        log.InfoLevel,
		CORSOrigins:     []string{"http://localhost:5173", "tauri://localhost"},
		KafkaTopic:      kafka.TopicOrderEvents,
		ShutdownTimeout: 5 * time.Second,
	}
}

// ConfigFromEnv накладывает переменные окружения поверх DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return configFromLookup(os.LookupEnv)
}

func configFromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvDBPath, &cfg.DBPath)
	str(EnvGRPCAddr, &cfg.GRPCAddr)
	str(EnvHTTPAddr, &cfg.HTTPAddr)
	str(EnvSeedLocale, &cfg.SeedLocale)
	str(EnvSeedFile, &cfg.SeedFile)
	str(EnvKafkaTopic, &cfg.KafkaTopic)

	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		level, err := log.ParseLevel(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}
	if v, ok := lookup(EnvCORSOrigins); ok {
		cfg.CORSOrigins = splitList(v)
	}
	if v, ok := lookup(EnvKafka); ok {
		cfg.KafkaBrokers = splitList(v)
	}

	return cfg, nil
}

// splitList разбирает список через запятую, пропуская пустые элементы.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
