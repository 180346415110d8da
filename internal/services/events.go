package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=events.go -destination=events_mock.go -package=services

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// AfterCommitFunc schedules fn to run after the transaction carried by ctx commits.
type AfterCommitFunc func(ctx context.Context, fn func(context.Context))

func runNow(ctx context.Context, fn func(context.Context)) { fn(ctx) }

// publishAccountEvent publishes an account event to Kafka.
// Publishing is best effort: failures are logged and never fail the operation.
func publishAccountEvent(ctx context.Context, w KafkaWriter, userID uuid.UUID, eventType string) {
	log := logger.FromContext(ctx)
	if w == nil {
		log.Debugw("Kafka writer not configured, skipping publishing", "type", eventType)
		return
	}

	event := models.AccountEvent{
		EventID:   uuid.NewString(),
		UserID:    userID.String(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorw("Failed to marshal account event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		log.Errorw("Failed to publish account event to Kafka", "event_id", event.EventID, "type", eventType, "error", err)
	} else {
		log.Infow("Account event published to Kafka", "event_id", event.EventID, "type", eventType)
	}
}
