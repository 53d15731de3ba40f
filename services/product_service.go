package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
)

type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,notblank,max=255"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku" binding:"required,notblank,max=100"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	StockQuantity int              `json:"stock_quantity" binding:"min=0"`
	Image         string           `json:"image"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    bool             `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,notblank,max=255"`
	Description   *string          `json:"description"`
	SKU           *string          `json:"sku" binding:"omitempty,notblank,max=100"`
	Price         *decimal.Decimal `json:"price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	Image         *string          `json:"image"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    *bool            `json:"is_featured"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

type ProductService struct {
	store  repository.Store
	cache  *ProductCache
	logger *zap.Logger
}

func NewProductService(store repository.Store, cache *ProductCache, logger *zap.Logger) *ProductService {
	return &ProductService{store: store, cache: cache, logger: logger}
}

// ListProducts returns a paginated catalog page, served from cache when possible.
// Non-admin callers only ever see active products.
func (s *ProductService) ListProducts(ctx context.Context, filters repository.ProductFilters, page, limit int) (*ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if products, total, ok := s.cache.GetList(ctx, filters, page, limit); ok {
		return &ProductListResponse{Products: products, Meta: buildMeta(page, limit, total)}, nil
	}

	products, total, err := s.store.Products().FindAll(ctx, filters, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}

	s.cache.SetList(ctx, filters, page, limit, products, total)
	return &ProductListResponse{Products: products, Meta: buildMeta(page, limit, total)}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, ok := s.cache.GetDetail(ctx, id); ok {
		return cached, nil
	}

	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id.String()}
		}
		return nil, err
	}

	s.cache.SetDetail(ctx, product)
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, &ValidationError{Message: "price cannot be negative"}
	}
	if req.SalePrice != nil && req.SalePrice.IsNegative() {
		return nil, &ValidationError{Message: "sale price cannot be negative"}
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		SKU:           strings.TrimSpace(req.SKU),
		Price:         req.Price.Round(2),
		StockQuantity: req.StockQuantity,
		Image:         req.Image,
		IsActive:      true,
		IsFeatured:    req.IsFeatured,
	}
	if req.SalePrice != nil {
		rounded := req.SalePrice.Round(2)
		product.SalePrice = &rounded
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.store.Products().Create(ctx, product); err != nil {
		if isDuplicateKey(err) {
			return nil, &ValidationError{Message: "a product with this SKU already exists"}
		}
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, product.ID)
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id.String()}
		}
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, &ValidationError{Message: "price cannot be negative"}
		}
		product.Price = req.Price.Round(2)
	}
	if req.SalePrice != nil {
		if req.SalePrice.IsNegative() {
			return nil, &ValidationError{Message: "sale price cannot be negative"}
		}
		rounded := req.SalePrice.Round(2)
		product.SalePrice = &rounded
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := s.store.Products().Update(ctx, product); err != nil {
		if isDuplicateKey(err) {
			return nil, &ValidationError{Message: "a product with this SKU already exists"}
		}
		s.logger.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Products().FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "product", ID: id.String()}
		}
		return err
	}

	if err := s.store.Products().Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		return err
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
