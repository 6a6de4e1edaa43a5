package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pos-terminal/internal/models"
)

type receiptRow struct {
	ID            string `db:"id"`
	InvoiceNumber string `db:"invoice_number"`
	UserID        string `db:"user_id"`
	PaymentMethod string `db:"payment_method"`
	PaymentStatus string `db:"payment_status"`
	Note          string `db:"note"`
	TotalAmount   int64  `db:"total_amount"`
	Products      string `db:"products"`
	DateUnixMs    int64  `db:"date_unix_ms"`
}

func toRow(r models.Receipt) (receiptRow, error) {
	products, err := json.Marshal(r.Products)
	if err != nil {
		return receiptRow{}, fmt.Errorf("failed to encode products of receipt %s: %w", r.ID, err)
	}
	return receiptRow{
		ID:            r.ID,
		InvoiceNumber: r.InvoiceNumber,
		UserID:        r.UserID,
		PaymentMethod: string(r.PaymentMethod),
		PaymentStatus: string(r.PaymentStatus),
		Note:          r.Note,
		TotalAmount:   r.TotalAmount,
		Products:      string(products),
		DateUnixMs:    r.Date.UnixMilli(),
	}, nil
}

func (row receiptRow) toReceipt() (models.Receipt, error) {
	var products []models.LineItem
	if err := json.Unmarshal([]byte(row.Products), &products); err != nil {
		return models.Receipt{}, fmt.Errorf("failed to decode products of receipt %s: %w", row.ID, err)
	}
	return models.Receipt{
		ID:            row.ID,
		InvoiceNumber: row.InvoiceNumber,
		Products:      products,
		UserID:        row.UserID,
		PaymentMethod: models.PaymentMethod(row.PaymentMethod),
		PaymentStatus: models.PaymentStatus(row.PaymentStatus),
		Note:          row.Note,
		TotalAmount:   row.TotalAmount,
		Date:          time.UnixMilli(row.DateUnixMs).UTC(),
	}, nil
}

// SaveReceipts inserts receipts that are not mirrored yet. Receipts are
// immutable on the backend, so existing rows are left alone.
func (s *Store) SaveReceipts(ctx context.Context, receipts []models.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.db.Rebind(`
		INSERT INTO receipts (id, invoice_number, user_id, payment_method, payment_status, note, total_amount, products, date_unix_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	for _, receipt := range receipts {
		row, err := toRow(receipt)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			row.ID, row.InvoiceNumber, row.UserID, row.PaymentMethod, row.PaymentStatus,
			row.Note, row.TotalAmount, row.Products, row.DateUnixMs); err != nil {
			return fmt.Errorf("failed to mirror receipt %s: %w", row.ID, err)
		}
	}

	return tx.Commit()
}

// ListReceipts returns every mirrored receipt, newest first
func (s *Store) ListReceipts(ctx context.Context) ([]models.Receipt, error) {
	var rows []receiptRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM receipts ORDER BY date_unix_ms DESC"); err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	receipts := make([]models.Receipt, 0, len(rows))
	for _, row := range rows {
		receipt, err := row.toReceipt()
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// DeleteReceipt removes a mirrored receipt
func (s *Store) DeleteReceipt(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM receipts WHERE id = ?"), id)
	return err
}
