package models

import "time"

// Event types
const (
	EventTypeInvoiceCreated = "INVOICE_CREATED"
	EventTypeInvoiceDeleted = "INVOICE_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// InvoiceCreatedEvent published after the backend confirmed a new invoice
type InvoiceCreatedEvent struct {
	BaseEvent
	Receipt Receipt `json:"receipt"`
}

// InvoiceDeletedEvent published after the backend confirmed an invoice deletion
type InvoiceDeletedEvent struct {
	BaseEvent
	ReceiptID string `json:"receipt_id"`
}
