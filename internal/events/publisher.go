// Package events publishes import-completed events through watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/JonMunkholm/members/internal/core"
)

// EventTypeImportCompleted is the event_type metadata value on every message.
const EventTypeImportCompleted = "import.completed"

// Publisher implements core.EventPublisher on a watermill publisher.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewPublisher(pub message.Publisher, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{publisher: pub, topic: topic, logger: logger}
}

// PublishImportCompleted sends evt as JSON to the configured topic.
func (p *Publisher) PublishImportCompleted(ctx context.Context, evt core.ImportCompleted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal import event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", EventTypeImportCompleted)
	msg.Metadata.Set("import_id", evt.ImportID)
	msg.Metadata.Set("entity", evt.Entity)
	msg.Metadata.Set("rolled_back", strconv.FormatBool(evt.RolledBack))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish import event: %w", err)
	}

	p.logger.Debug("published import event",
		"import_id", evt.ImportID,
		"topic", p.topic,
		"message_id", msg.UUID,
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// Decode reads an import-completed event back out of a message.
func Decode(msg *message.Message) (core.ImportCompleted, error) {
	var evt core.ImportCompleted
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return evt, fmt.Errorf("decode import event %s: %w", msg.UUID, err)
	}
	return evt, nil
}
