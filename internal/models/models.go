package models

import "time"

// PaymentMethod values are the labels the backend stores on invoices.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Tiền mặt"
	PaymentMethodBankTransfer PaymentMethod = "Chuyển khoản"
	PaymentMethodCard         PaymentMethod = "Thẻ tín dụng"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "Chưa thanh toán"
	PaymentStatusPaid   PaymentStatus = "Đã thanh toán"
)

// Product is the catalog entry owned by the backend
type Product struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Price     int64      `json:"price"`
	Image     string     `json:"image"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ProductInput is the payload for creating or updating a product
type ProductInput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

// LineItem is a product snapshot taken when it was added to a cart.
type LineItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Image       string `json:"image"`
	Total       int64  `json:"total"`
}

// Cart is an invoice in progress. It only lives in the register until checkout.
type Cart struct {
	ID            int           `json:"id"`
	Items         []LineItem    `json:"items"`
	Note          string        `json:"note"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Date          time.Time     `json:"date"`
	TotalAmount   int64         `json:"totalAmount"`
	CheckingOut   bool          `json:"checkingOut"`
}

// Receipt is a persisted invoice
type Receipt struct {
	ID            string        `json:"_id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Products      []LineItem    `json:"products"`
	UserID        string        `json:"userId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Note          string        `json:"note"`
	TotalAmount   int64         `json:"totalAmount"`
	Date          time.Time     `json:"date"`
}

// CreateReceiptRequest is the body sent to POST /api/invoices
type CreateReceiptRequest struct {
	Products      []LineItem    `json:"products"`
	UserID        string        `json:"userId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Note          string        `json:"note"`
	TotalAmount   int64         `json:"totalAmount"`
}

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName is what the register greets the cashier with.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Audit actions
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// ProductSnapshot is the product state recorded on one side of an audit change.
type ProductSnapshot struct {
	Name  *string `json:"name,omitempty"`
	Price *int64  `json:"price,omitempty"`
	Image *string `json:"image,omitempty"`
}

type AuditChanges struct {
	Old *ProductSnapshot `json:"old,omitempty"`
	New *ProductSnapshot `json:"new,omitempty"`
}

// AuditLog records a change made to the catalog
type AuditLog struct {
	Action    string       `json:"action"`
	User      string       `json:"user"`
	Product   string       `json:"product,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Changes   AuditChanges `json:"changes"`
}
