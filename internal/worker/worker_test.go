package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pos-terminal/internal/broker"
	"pos-terminal/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceipts struct {
	created []models.Receipt
	deleted []string
}

func (f *fakeReceipts) Source() string { return "terminal-local" }

func (f *fakeReceipts) ApplyRemoteCreated(ctx context.Context, receipt models.Receipt) {
	f.created = append(f.created, receipt)
}

func (f *fakeReceipts) ApplyRemoteDeleted(ctx context.Context, id string) {
	f.deleted = append(f.deleted, id)
}

// replaySource feeds a fixed list of messages to the handler.
type replaySource struct {
	messages []kafka.Message
	closed   bool
}

func (r *replaySource) StartConsuming(ctx context.Context, handler broker.MessageHandler) error {
	for _, msg := range r.messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *replaySource) Close() error {
	r.closed = true
	return nil
}

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestWorkerAppliesRemoteEventsOnly(t *testing.T) {
	receipts := &fakeReceipts{}
	source := &replaySource{messages: []kafka.Message{
		message(t, models.InvoiceCreatedEvent{
			BaseEvent: models.BaseEvent{EventID: "1", EventType: models.EventTypeInvoiceCreated, Source: "terminal-remote", Timestamp: time.Now()},
			Receipt:   models.Receipt{ID: "r-remote", TotalAmount: 20000},
		}),
		message(t, models.InvoiceCreatedEvent{
			BaseEvent: models.BaseEvent{EventID: "2", EventType: models.EventTypeInvoiceCreated, Source: "terminal-local", Timestamp: time.Now()},
			Receipt:   models.Receipt{ID: "r-local"},
		}),
		message(t, models.InvoiceDeletedEvent{
			BaseEvent: models.BaseEvent{EventID: "3", EventType: models.EventTypeInvoiceDeleted, Source: "terminal-remote", Timestamp: time.Now()},
			ReceiptID: "r-old",
		}),
	}}

	w := newReceiptSyncWorker(source, receipts)
	require.NoError(t, w.Start(context.Background()))

	require.Len(t, receipts.created, 1)
	assert.Equal(t, "r-remote", receipts.created[0].ID)
	assert.Equal(t, []string{"r-old"}, receipts.deleted)

	require.NoError(t, w.Stop())
	assert.True(t, source.closed)
}
