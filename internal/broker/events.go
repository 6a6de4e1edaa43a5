package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing invoice events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func invoiceKey(receiptID string) string {
	return "invoice-" + receiptID
}

// PublishInvoiceCreated publishes InvoiceCreated event
func (ep *EventPublisher) PublishInvoiceCreated(ctx context.Context, event *models.InvoiceCreatedEvent) error {
	if err := ep.producer.PublishEvent(ctx, invoiceKey(event.Receipt.ID), event); err != nil {
		return err
	}
	util.InvoiceEventsTotal.WithLabelValues(event.EventType, "published").Inc()
	return nil
}

// PublishInvoiceDeleted publishes InvoiceDeleted event
func (ep *EventPublisher) PublishInvoiceDeleted(ctx context.Context, event *models.InvoiceDeletedEvent) error {
	if err := ep.producer.PublishEvent(ctx, invoiceKey(event.ReceiptID), event); err != nil {
		return err
	}
	util.InvoiceEventsTotal.WithLabelValues(event.EventType, "published").Inc()
	return nil
}

// EventHandler handles incoming events
type EventHandler struct {
	onInvoiceCreated func(context.Context, *models.InvoiceCreatedEvent) error
	onInvoiceDeleted func(context.Context, *models.InvoiceDeletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

func (eh *EventHandler) OnInvoiceCreated(handler func(context.Context, *models.InvoiceCreatedEvent) error) {
	eh.onInvoiceCreated = handler
}

func (eh *EventHandler) OnInvoiceDeleted(handler func(context.Context, *models.InvoiceDeletedEvent) error) {
	eh.onInvoiceDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	logger := util.GetLogger()
	logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeInvoiceCreated:
		if eh.onInvoiceCreated != nil {
			var event models.InvoiceCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InvoiceCreated event: %w", err)
			}
			return eh.onInvoiceCreated(ctx, &event)
		}

	case models.EventTypeInvoiceDeleted:
		if eh.onInvoiceDeleted != nil {
			var event models.InvoiceDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InvoiceDeleted event: %w", err)
			}
			return eh.onInvoiceDeleted(ctx, &event)
		}

	default:
		logger.Debug("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
