package service

import (
	"context"
	"fmt"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
)

// CreateProductInput carries a validated product payload. Optional fields
// default to empty strings; quantity and price are guaranteed non-negative
// by the transport layer.
type CreateProductInput struct {
	Name        string
	Type        string
	SKU         string
	ImageURL    string
	Description string
	Quantity    int
	Price       float64
	AddedBy     uuid.UUID
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (uuid.UUID, error)
	List(ctx context.Context, page, perPage int) ([]*domain.Product, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// Create inserts a new product after checking SKU uniqueness. The check and
// the insert are separate storage operations; the unique index on sku is
// what actually rejects the loser of a concurrent duplicate create.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (uuid.UUID, error) {
	existing, err := s.productRepo.FindBySKU(ctx, input.SKU)
	if err != nil && err != repository.ErrProductNotFound {
		return uuid.Nil, fmt.Errorf("failed to check existing SKU: %w", err)
	}
	if existing != nil {
		return uuid.Nil, repository.ErrProductSKUExists
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Type:        input.Type,
		SKU:         input.SKU,
		ImageURL:    input.ImageURL,
		Description: input.Description,
		Quantity:    input.Quantity,
		Price:       input.Price,
		AddedBy:     input.AddedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return uuid.Nil, err
	}

	return product.ID, nil
}

// List returns one page of products in insertion order
func (s *productService) List(ctx context.Context, page, perPage int) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, page, perPage)
}

// UpdateQuantity sets the quantity of a product and re-reads the record so
// the caller observes its own write
func (s *productService) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error) {
	if err := s.productRepo.UpdateQuantity(ctx, id, quantity); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read product after update: %w", err)
	}

	return product, nil
}
