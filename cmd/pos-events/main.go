package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/app"
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
)

type config struct {
	brokers  []string
	topic    string
	group    string
	interval time.Duration
}

func parseConfig(args []string) (config, error) {
	base, err := app.ConfigFromEnv()
	if err != nil {
		return config{}, err
	}

	cfg := config{topic: base.KafkaTopic}
	var brokers string
	flags := flag.NewFlagSet("pos-events", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&brokers, "brokers", strings.Join(base.KafkaBrokers, ","), "kafka brokers (fallback: KAFKA_BROKERS)")
	flags.StringVar(&cfg.topic, "topic", cfg.topic, "sale events topic")
	flags.StringVar(&cfg.group, "group", "pos-sales-feed", "consumer group id")
	flags.DurationVar(&cfg.interval, "interval", 30*time.Second, "how often to log running totals")
	if err := flags.Parse(args); err != nil {
		return config{}, err
	}

	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.brokers = append(cfg.brokers, b)
		}
	}
	if len(cfg.brokers) == 0 {
		return config{}, errors.New("KAFKA_BROKERS (or -brokers) is required")
	}
	if cfg.interval <= 0 {
		return config{}, fmt.Errorf("interval must be positive, got %s", cfg.interval)
	}
	return cfg, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Fatal("не удалось прочитать .env")
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := kafka.NewSalesFeed(nil)
	consumer, err := kafka.NewConsumer(cfg.brokers, cfg.group, []string{cfg.topic}, feed.Handle)
	if err != nil {
		log.WithError(err).Fatal("не удалось подключиться к kafka")
	}
	if err := consumer.Start(ctx); err != nil {
		log.WithError(err).Fatal("не удалось запустить consumer")
	}

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			logSnapshot(feed.Snapshot())
		}
	}

	if err := consumer.Stop(); err != nil {
		log.WithError(err).Warn("consumer stopped with error")
	}
	logSnapshot(feed.Snapshot())
}

func logSnapshot(s kafka.FeedSnapshot) {
	log.WithFields(log.Fields{
		"orders":     s.Orders,
		"revenue":    s.Revenue,
		"by_payment": s.RevenueByPayment,
		"resets":     s.Resets,
		"last_order": s.LastOrderID,
	}).Info("итоги ленты продаж")
}
