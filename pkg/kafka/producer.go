package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/adyen-bridge/pkg/config"
)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is used by services to publish events.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}

type KafkaProducer struct {
	writer  Writer
	timeout time.Duration
}

type Option func(*KafkaProducer)

// WithPublishTimeout caps how long a single Publish may block.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *KafkaProducer) { p.timeout = d }
}

func NewKafkaProducer(cfg config.KafkaConfig) *KafkaProducer {
	w := &skafka.Writer{
		Addr:         skafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.PublishTimeout,
	}
	return NewKafkaProducerWithWriter(w, WithPublishTimeout(cfg.PublishTimeout))
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer, opts ...Option) *KafkaProducer {
	p := &KafkaProducer{writer: w}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish marshals value to JSON and writes it under key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal kafka value: %w", err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, skafka.Message{Key: []byte(key), Value: b}); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

func NewPublisher(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Infow("kafka disabled, order events are not published")
		return NopPublisher{}
	}
	p := NewKafkaProducer(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.Close()
		},
	})
	log.Infow("kafka publisher ready", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "publish_timeout", cfg.Kafka.PublishTimeout)
	return p
}

var Module = fx.Options(
	fx.Provide(NewPublisher),
)
