package service

import (
	"context"
	"strings"
	"sync"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"go.uber.org/zap"
)

type ProductBackend interface {
	ListProducts(ctx context.Context, token string) ([]models.Product, error)
	CreateProduct(ctx context.Context, token string, input models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, token, id string, input models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, token, id string) (string, error)
}

// ProductService caches the backend catalog.
type ProductService struct {
	backend ProductBackend
	auth    *AuthService
	logger  *zap.Logger

	mu       sync.RWMutex
	products []models.Product
	seq      fetchSeq
}

// NewProductService creates a new product service
func NewProductService(backend ProductBackend, auth *AuthService) *ProductService {
	return &ProductService{
		backend:  backend,
		auth:     auth,
		logger:   util.GetLogger(),
		products: []models.Product{},
	}
}

// Fetch reloads the catalog. Anonymous callers are allowed.
func (s *ProductService) Fetch(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Fetch")
	defer span.End()

	ticket := s.seq.ticket()
	products, err := s.backend.ListProducts(ctx, s.auth.OptionalToken(ctx))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.seq.accept(ticket) {
		s.products = products
	} else {
		s.logger.Debug("Discarding stale product fetch", zap.Uint64("ticket", ticket))
	}
	s.mu.Unlock()

	return s.List(), nil
}

func (s *ProductService) List() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Search filters the cached catalog by a case-insensitive name substring.
func (s *ProductService) Search(query string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.List()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

func (s *ProductService) Get(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *ProductService) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	input, err := validateProductInput(input)
	if err != nil {
		return nil, err
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	product, err := s.backend.CreateProduct(ctx, token, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.products = append(s.products, *product)
	s.seq.bump()
	s.mu.Unlock()

	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, input models.ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, validationf("Thiếu mã sản phẩm")
	}
	input, err := validateProductInput(input)
	if err != nil {
		return nil, err
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	product, err := s.backend.UpdateProduct(ctx, token, id, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = *product
			break
		}
	}
	s.seq.bump()
	s.mu.Unlock()

	s.logger.Info("Product updated", zap.String("product_id", id))
	return product, nil
}

// Delete removes the product and returns the backend message.
func (s *ProductService) Delete(ctx context.Context, id string) (string, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return "", validationf("Thiếu mã sản phẩm")
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return "", err
	}

	message, err := s.backend.DeleteProduct(ctx, token, id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.seq.bump()
	s.mu.Unlock()

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return message, nil
}

func validateProductInput(input models.ProductInput) (models.ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Image = strings.TrimSpace(input.Image)
	if input.Name == "" || input.Image == "" {
		return input, validationf("Vui lòng nhập đầy đủ tên, giá và hình ảnh sản phẩm")
	}
	if input.Price <= 0 {
		return input, validationf("Giá sản phẩm phải lớn hơn 0")
	}
	return input, nil
}
