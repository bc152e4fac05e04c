package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductBarcodeExists = errors.New("product barcode already exists")
	ErrInvalidBarcode       = errors.New("invalid barcode")
)

type ProductListOptions struct {
	Search string
	Limit  int
	Offset int
}

type ProductListResult struct {
	Products   []model.Product `json:"products"`
	TotalCount int64           `json:"total_count"`
}

// ProductService manages the shared product catalog. Products are
// created once by store staff and never mutated afterwards; per-store
// price and stock live on StoreProduct.
type ProductService interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	ListProducts(opts ProductListOptions) (*ProductListResult, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(ctx context.Context, product *model.Product) error {
	product.Barcode = strings.TrimSpace(product.Barcode)
	if product.Barcode == "" {
		return ErrInvalidBarcode
	}

	existing, err := s.productRepo.FindByBarcode(ctx, product.Barcode)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		logger.Warn("Product creation rejected: barcode exists", map[string]interface{}{
			"barcode": product.Barcode,
		})
		return ErrProductBarcodeExists
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"barcode": product.Barcode,
		})
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"barcode":    product.Barcode,
	})
	return nil
}

func (s *productService) GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	product, err := s.productRepo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(opts ProductListOptions) (*ProductListResult, error) {
	products, total, err := s.productRepo.FindAll(repository.ProductFilter{
		Search: opts.Search,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	return &ProductListResult{
		Products:   products,
		TotalCount: total,
	}, nil
}
