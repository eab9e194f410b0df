package consumer

import (
	"context"
	"encoding/json"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/transitgo/service-booking/internal/application"
	"github.com/transitgo/service-booking/internal/domain"
	"github.com/transitgo/service-booking/internal/events"
	"github.com/transitgo/service-booking/internal/platform/kafka"
)

// TripEventConsumer listens to trip lifecycle events from the ops scheduler
// and closes out bookings when their trip has run.
type TripEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewTripEventConsumer creates a new TripEventConsumer.
func NewTripEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *TripEventConsumer {
	c := kafka.NewConsumer(brokers, groupID, events.TopicTripEvents, logger)
	return &TripEventConsumer{
		consumer: c,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming trip events. This blocks until the context is cancelled.
func (c *TripEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *TripEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *TripEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from trip topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.TripCompleted:
		return c.handleTripCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled trip event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *TripEventConsumer) handleTripCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.TripCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse TripCompletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing trip completed event",
		zap.String("trip_id", evt.TripID.String()),
	)

	if err := c.service.CompleteTrip(ctx, evt.TripID); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			c.logger.Warn("trip completed event for unknown trip",
				zap.String("trip_id", evt.TripID.String()),
			)
			return nil
		}
		c.logger.Error("failed to complete trip bookings",
			zap.String("trip_id", evt.TripID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
