package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"pos-terminal/internal/models"
)

// ListProducts fetches the catalog. token may be empty; the catalog is public.
func (c *Client) ListProducts(ctx context.Context, token string) ([]models.Product, error) {
	env, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/products",
		route:  "/api/products",
		token:  token,
	})
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := decodeData(env, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, input models.ProductInput) (*models.Product, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/products",
		route:  "/api/products",
		token:  token,
		body:   input,
	})
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := decodeData(env, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, input models.ProductInput) (*models.Product, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/api/products/" + url.PathEscape(id),
		route:  "/api/products/:id",
		token:  token,
		body:   input,
	})
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := decodeData(env, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product and returns the backend message.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/api/products/" + url.PathEscape(id),
		route:  "/api/products/:id",
		token:  token,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
