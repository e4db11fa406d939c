package transport

import (
	"errors"
	"net/http"
	"strconv"

	"inventory-api/internal/domain"
	"inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// CreateProductRequest represents the product creation payload. Quantity and
// price are pointers so an absent field is distinguishable from a zero.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Type        string   `json:"type" validate:"required"`
	SKU         string   `json:"sku" validate:"required"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

// UpdateQuantityRequest represents the quantity update payload
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// CreateProductResponse represents the product creation response
type CreateProductResponse struct {
	Message   string `json:"message"`
	ProductID string `json:"product_id"`
}

// ProductResponse represents a product in the listing
type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	SKU         string  `json:"sku"`
	ImageURL    string  `json:"image_url"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// UpdateQuantityResponse represents the quantity update response
type UpdateQuantityResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Message  string `json:"message"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the product routes behind the auth gate
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Put("/{id}/quantity", h.UpdateQuantity)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	addedBy, ok := middleware.GetPublicID(r.Context())
	if !ok {
		h.logger.Error("Public ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := h.productService.Create(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Type:        req.Type,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Quantity:    *req.Quantity,
		Price:       *req.Price,
		AddedBy:     addedBy,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductSKUExists) {
			middleware.RespondWithError(w, http.StatusConflict, "product with this SKU already exists")
			return
		}

		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", productID.String()),
		zap.String("sku", req.SKU),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, CreateProductResponse{
		Message:   "Product added successfully!",
		ProductID: productID.String(),
	})
}

// List handles paginated product listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := parsePagination(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid page or per_page parameter.")
		return
	}

	products, err := h.productService.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// UpdateQuantity handles the single-field quantity update
func (h *ProductHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID format!")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Quantity validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.UpdateQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found!")
			return
		}

		h.logger.Error("Quantity update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update quantity")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, UpdateQuantityResponse{
		ID:       product.ID.String(),
		Name:     product.Name,
		Quantity: product.Quantity,
		Message:  "Quantity updated successfully",
	})
}

// parsePagination reads page/per_page query params. Both default when
// absent and must be integers >= 1.
func parsePagination(r *http.Request) (page, perPage int, err error) {
	page = defaultPage
	perPage = defaultPerPage

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}

	if page < 1 || perPage < 1 {
		return 0, 0, errors.New("page and per_page must be >= 1")
	}

	return page, perPage, nil
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Type:        p.Type,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Quantity:    p.Quantity,
		Price:       p.Price,
	}
}
