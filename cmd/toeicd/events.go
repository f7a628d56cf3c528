package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/toeic-session-service/internal/config"
	"github.com/SAP-F-2025/toeic-session-service/internal/events"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail session events from Kafka",
	Long: `Subscribes to the session topic and logs every session and journey
event. Downstream services consume the same topic for notifications and
analytics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		return tailEvents(cmd.Context(), group)
	},
}

func init() {
	eventsCmd.Flags().String("group", "toeicd-events", "Kafka consumer group")
}

func tailEvents(ctx context.Context, group string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(os.Stdout, cfg.IsProduction())

	if cfg.Events.Publisher != "kafka" {
		return fmt.Errorf("events are published with %q, only kafka can be tailed", cfg.Events.Publisher)
	}

	sub, err := events.NewKafkaSubscriber(events.SubscriberConfig{
		KafkaBrokers:  cfg.Events.GetKafkaBrokers(),
		ConsumerGroup: group,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	logger.Info("Tailing session events", "topic", cfg.Events.SessionTopic, "group", group)
	return events.Consume(ctx, sub, cfg.Events.SessionTopic, logEvent(logger), logger)
}

func logEvent(logger *slog.Logger) events.EventHandler {
	return func(_ context.Context, event *events.SessionEvent) error {
		attrs := []any{"event_id", event.ID, "event_type", event.Type, "timestamp", event.Timestamp}

		switch event.Type {
		case events.EventSessionSubmitted:
			var data events.SessionSubmittedEvent
			if err := events.DecodeData(event, &data); err != nil {
				return err
			}
			attrs = append(attrs,
				"session_id", data.SessionID,
				"user_id", data.UserID,
				"reason", data.Reason,
				"score", data.Score)
		case events.EventJourneyProgress:
			var data events.JourneyProgressEvent
			if err := events.DecodeData(event, &data); err != nil {
				return err
			}
			attrs = append(attrs, "user_id", data.UserID, "action", data.Action)
		default:
			var data struct {
				SessionID string `json:"session_id"`
				UserID    string `json:"user_id"`
			}
			if err := events.DecodeData(event, &data); err != nil {
				return err
			}
			attrs = append(attrs, "session_id", data.SessionID, "user_id", data.UserID)
		}

		logger.Info("Session event", attrs...)
		return nil
	}
}
