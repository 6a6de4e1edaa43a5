package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"pos-terminal/internal/models"
)

func (c *Client) CreateInvoice(ctx context.Context, token string, req models.CreateReceiptRequest) (*models.Receipt, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/invoices",
		route:  "/api/invoices",
		token:  token,
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var receipt models.Receipt
	if err := decodeData(env, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) ListInvoices(ctx context.Context, token string) ([]models.Receipt, error) {
	env, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/invoices",
		route:  "/api/invoices",
		token:  token,
	})
	if err != nil {
		return nil, err
	}

	var receipts []models.Receipt
	if err := decodeData(env, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (c *Client) GetInvoice(ctx context.Context, token, id string) (*models.Receipt, error) {
	env, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/invoices/" + url.PathEscape(id),
		route:  "/api/invoices/:id",
		token:  token,
	})
	if err != nil {
		return nil, err
	}

	var receipt models.Receipt
	if err := decodeData(env, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// DeleteInvoice removes an invoice and returns the backend message.
func (c *Client) DeleteInvoice(ctx context.Context, token, id string) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/api/invoices/" + url.PathEscape(id),
		route:  "/api/invoices/:id",
		token:  token,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
