package service

import (
	"context"
	"fmt"
	"testing"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
)

// Mock product repository preserving insertion order
type mockProductRepository struct {
	products []*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return repository.ErrProductSKUExists
		}
	}
	m.products = append(m.products, product)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, page, perPage int) ([]*domain.Product, error) {
	offset := (page - 1) * perPage
	if offset >= len(m.products) {
		return []*domain.Product{}, nil
	}
	end := offset + perPage
	if end > len(m.products) {
		end = len(m.products)
	}
	return m.products[offset:end], nil
}

func (m *mockProductRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	for _, p := range m.products {
		if p.ID == id {
			p.Quantity = quantity
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func testInput(sku string) CreateProductInput {
	return CreateProductInput{
		Name:     "Phone",
		Type:     "Electronics",
		SKU:      sku,
		Quantity: 5,
		Price:    999.99,
		AddedBy:  uuid.New(),
	}
}

func TestCreateProduct(t *testing.T) {
	repo := newMockProductRepository()
	service := NewProductService(repo)
	ctx := context.Background()

	id, err := service.Create(ctx, testInput("PHN-001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("Created product not found: %v", err)
	}
	if stored.SKU != "PHN-001" || stored.Quantity != 5 || stored.Price != 999.99 {
		t.Errorf("Stored product does not match input: %+v", stored)
	}
}

func TestCreateProductDuplicateSKUConflicts(t *testing.T) {
	repo := newMockProductRepository()
	service := NewProductService(repo)
	ctx := context.Background()

	if _, err := service.Create(ctx, testInput("PHN-001")); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	_, err := service.Create(ctx, testInput("PHN-001"))
	if err != repository.ErrProductSKUExists {
		t.Errorf("Expected ErrProductSKUExists, got: %v", err)
	}

	// Exactly one record with that SKU exists afterward
	if len(repo.products) != 1 {
		t.Errorf("Expected exactly one record, got %d", len(repo.products))
	}
}

func TestUpdateQuantityReadAfterWrite(t *testing.T) {
	repo := newMockProductRepository()
	service := NewProductService(repo)
	ctx := context.Background()

	id, err := service.Create(ctx, testInput("PHN-001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := service.UpdateQuantity(ctx, id, 15)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}

	// The returned record is the re-read one and observes the write
	if updated.Quantity != 15 {
		t.Errorf("Expected quantity 15, got %d", updated.Quantity)
	}

	// A subsequent list observes the same quantity
	products, err := service.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(products) != 1 || products[0].Quantity != 15 {
		t.Errorf("List did not observe the quantity update: %+v", products)
	}
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	repo := newMockProductRepository()
	service := NewProductService(repo)

	_, err := service.UpdateQuantity(context.Background(), uuid.New(), 10)
	if err != repository.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound, got: %v", err)
	}
}

func TestListPagination(t *testing.T) {
	repo := newMockProductRepository()
	service := NewProductService(repo)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		if _, err := service.Create(ctx, testInput(fmt.Sprintf("SKU-%03d", i))); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	// Page 2 of 5 returns records 6-10 in insertion order
	page2, err := service.List(ctx, 2, 5)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page2) != 5 {
		t.Fatalf("Expected 5 products, got %d", len(page2))
	}
	for i, p := range page2 {
		expected := fmt.Sprintf("SKU-%03d", i+6)
		if p.SKU != expected {
			t.Errorf("Expected SKU %s at position %d, got %s", expected, i, p.SKU)
		}
	}

	// Pages past the end are empty, not an error
	empty, err := service.List(ctx, 5, 5)
	if err != nil {
		t.Fatalf("List past the end failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty page, got %d products", len(empty))
	}
}
