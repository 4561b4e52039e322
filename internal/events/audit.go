package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RunAuditLog subscribes to topic and logs one line per import event until
// ctx is done. It returns once the subscription is established.
func RunAuditLog(ctx context.Context, sub message.Subscriber, topic string, logger *slog.Logger) error {
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	go func() {
		for msg := range msgs {
			evt, err := Decode(msg)
			if err != nil {
				logger.Warn("dropping undecodable import event", "error", err)
				msg.Ack()
				continue
			}

			logger.Info("import audit",
				"import_id", evt.ImportID,
				"entity", evt.Entity,
				"total", evt.TotalRows,
				"succeeded", evt.SuccessCount,
				"failed", evt.ErrorCount,
				"rolled_back", evt.RolledBack,
				"duration_ms", evt.DurationMs,
				"ip", evt.Actor.IP,
				"source", evt.Actor.Source,
			)
			msg.Ack()
		}
	}()
	return nil
}
