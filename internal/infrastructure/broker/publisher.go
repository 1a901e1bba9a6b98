package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"comanda/internal/config"
)

// Publisher delivers settlement messages to downstream consumers. Publish
// returns only after the broker has accepted the message.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
	Close() error
}

// New builds the publisher selected by cfg.Kind.
func New(cfg config.BrokerConfig, logger *zap.Logger) (Publisher, error) {
	switch cfg.Kind {
	case config.BrokerRabbitMQ:
		return DialRabbitMQ(cfg.RabbitMQ)
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg.Kafka)
	case config.BrokerLog, "":
		return NewLogPublisher(logger), nil
	}
	return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
}

// LogPublisher only logs messages. Used when no broker is deployed.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, key string, body []byte) error {
	p.logger.Info("settlement published", zap.String("key", key), zap.Int("bytes", len(body)))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
