package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/internal/notify"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test events through the event bus and, when configured, the broker`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: `Publish a test event to the event bus for testing and debugging.
budget.reset and budget.recalculated build a typed ledger event for --user-id.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventData   string
	eventUserID int64
)

func publishTestEvent(eventType string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	if cfg.Messaging.Enabled() {
		pub, err := notify.Dial(cfg.Messaging.AMQPURL, cfg.Messaging.Exchange, cfg.Messaging.RoutingKey, lg)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		defer pub.Close()
		pub.Subscribe(eventBus)
	}

	testEvent := buildTestEvent(eventType, eventUserID, eventData, time.Now())
	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.EventID())

	if err := eventBus.PublishSync(context.Background(), testEvent); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func buildTestEvent(eventType string, userID int64, message string, now time.Time) events.Event {
	today := calendar.DateOf(now)
	switch eventType {
	case events.EventTypeBudgetReset:
		return events.NewBudgetResetEvent(userID, calendar.StartOfMonth(today), calendar.NextMonthStart(today), decimal.Zero)
	case events.EventTypeBudgetRecalculated:
		return events.NewBudgetRecalculatedEvent(userID, decimal.Zero, decimal.Zero, calendar.StartOfMonth(today))
	}
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now,
		Data: map[string]interface{}{
			"message": message,
			"source":  "cli-command",
		},
	}
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 0, "Owner of a budget.* test event")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
