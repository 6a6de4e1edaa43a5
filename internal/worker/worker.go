package worker

import (
	"context"

	"pos-terminal/internal/broker"
	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"go.uber.org/zap"
)

// ReceiptApplier is the receipt cache the worker keeps in sync. *service.ReceiptService implements it.
type ReceiptApplier interface {
	Source() string
	ApplyRemoteCreated(ctx context.Context, receipt models.Receipt)
	ApplyRemoteDeleted(ctx context.Context, id string)
}

type messageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// ReceiptSyncWorker applies invoice events from other terminals to the local receipt cache.
type ReceiptSyncWorker struct {
	consumer     messageSource
	eventHandler *broker.EventHandler
	receipts     ReceiptApplier
	logger       *zap.Logger
}

// NewReceiptSyncWorker creates a new receipt sync worker
func NewReceiptSyncWorker(consumer *broker.Consumer, receipts ReceiptApplier) *ReceiptSyncWorker {
	return newReceiptSyncWorker(consumer, receipts)
}

func newReceiptSyncWorker(consumer messageSource, receipts ReceiptApplier) *ReceiptSyncWorker {
	w := &ReceiptSyncWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		receipts:     receipts,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnInvoiceCreated(w.handleCreated)
	w.eventHandler.OnInvoiceDeleted(w.handleDeleted)
	return w
}

// Start blocks until ctx is cancelled
func (w *ReceiptSyncWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting receipt sync worker", zap.String("source", w.receipts.Source()))
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReceiptSyncWorker) Stop() error {
	w.logger.Info("Stopping receipt sync worker")
	return w.consumer.Close()
}

func (w *ReceiptSyncWorker) handleCreated(ctx context.Context, event *models.InvoiceCreatedEvent) error {
	if event.Source == w.receipts.Source() {
		return nil
	}
	w.receipts.ApplyRemoteCreated(ctx, event.Receipt)
	util.InvoiceEventsTotal.WithLabelValues(event.EventType, "applied").Inc()
	w.logger.Debug("Applied remote invoice",
		zap.String("receipt_id", event.Receipt.ID),
		zap.String("source", event.Source))
	return nil
}

func (w *ReceiptSyncWorker) handleDeleted(ctx context.Context, event *models.InvoiceDeletedEvent) error {
	if event.Source == w.receipts.Source() {
		return nil
	}
	w.receipts.ApplyRemoteDeleted(ctx, event.ReceiptID)
	util.InvoiceEventsTotal.WithLabelValues(event.EventType, "applied").Inc()
	return nil
}
