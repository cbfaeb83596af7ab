package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
)

// newProducer подменяется в тестах.
var newProducer = func(brokers []string, topic string) (*kafka.Producer, error) {
	return kafka.NewProducer(brokers, topic)
}

// initPublisher создаёт Kafka producer, если брокеры заданы.
// Недоступный брокер не мешает старту: события просто не публикуются.
func initPublisher(cfg Config, logger *log.Entry) (domain.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return domain.NoopPublisher{}, func() {}
	}

	producer, err := newProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return domain.NoopPublisher{}, func() {}
	}

	logger.WithFields(log.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.KafkaTopic,
	}).Info("kafka producer initialized")

	return producer, func() { closeKafka(producer, logger) }
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
