package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventHandler is called once per decoded event. Returning an error nacks the
// message so the subscriber redelivers it.
type EventHandler func(ctx context.Context, event *SessionEvent) error

// SubscriberConfig holds configuration for a Kafka subscriber
type SubscriberConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	Logger        *slog.Logger
}

// NewKafkaSubscriber creates a Kafka consumer for the session topic.
func NewKafkaSubscriber(config SubscriberConfig) (message.Subscriber, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               config.KafkaBrokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return sub, nil
}

// Consume reads topic until ctx is done or the subscription closes.
// Undecodable messages are logged and acked so they do not block the topic.
func Consume(ctx context.Context, sub message.Subscriber, topic string, handle EventHandler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := DecodeEvent(msg)
			if err != nil {
				logger.Warn("Dropping undecodable event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := handle(ctx, event); err != nil {
				logger.Error("Failed to handle session event",
					"event_id", event.ID,
					"event_type", event.Type,
					"error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

// DecodeEvent reads the envelope of a published message. Data is left as raw
// JSON; use DecodeData to read it into the struct for the event type.
func DecodeEvent(msg *message.Message) (*SessionEvent, error) {
	var envelope struct {
		SessionEvent
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session event: %w", err)
	}
	if envelope.Type == "" {
		envelope.Type = EventType(msg.Metadata.Get("event_type"))
	}
	event := envelope.SessionEvent
	event.Data = envelope.Data
	return &event, nil
}

// DecodeData unmarshals the payload of an event returned by DecodeEvent.
func DecodeData(event *SessionEvent, into interface{}) error {
	raw, ok := event.Data.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(event.Data); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, into)
}
