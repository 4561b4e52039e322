package events

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/JonMunkholm/members/internal/config"
	"github.com/JonMunkholm/members/internal/core"
)

const (
	BackendNone      = "none"
	BackendGoChannel = "gochannel"
	BackendKafka     = "kafka"
)

// NewGoChannel returns an in-process pub/sub. Messages published with no
// subscriber are dropped.
func NewGoChannel(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
}

// NewKafkaPublisher returns a watermill publisher writing to brokers.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (message.Publisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return pub, nil
}

// Bus is the event backend selected by configuration.
type Bus struct {
	Topic string

	publisher *Publisher
	// Subscriber is set for the in-process backend so the audit log can
	// consume what the service publishes.
	Subscriber message.Subscriber

	closers []func() error
}

// Open builds the backend named by cfg.Backend.
func Open(cfg config.EventsConfig, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bus := &Bus{Topic: cfg.Topic}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
	case BackendGoChannel:
		ch := NewGoChannel(logger)
		bus.publisher = NewPublisher(ch, cfg.Topic, logger)
		bus.Subscriber = ch
		bus.closers = append(bus.closers, ch.Close)
	case BackendKafka:
		pub, err := NewKafkaPublisher(cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, err
		}
		bus.publisher = NewPublisher(pub, cfg.Topic, logger)
		bus.closers = append(bus.closers, pub.Close)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
	return bus, nil
}

// EventPublisher returns the publisher for core.WithEventPublisher, or nil
// when events are disabled.
func (b *Bus) EventPublisher() core.EventPublisher {
	if b.publisher == nil {
		return nil
	}
	return b.publisher
}

func (b *Bus) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
