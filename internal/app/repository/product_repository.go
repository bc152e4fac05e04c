package repository

import (
	"context"
	"strings"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search string // case-insensitive substring on name
	Limit  int
	Offset int
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindByID(id uint) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error)
	FindAll(filter ProductFilter) ([]model.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"barcode": product.Barcode,
		"name":    product.Name,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"barcode": product.Barcode,
		})
		return err
	}
	return nil
}

// BulkCreate inserts products in batches, used by the seed importer
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchByName matches products whose name contains the query,
// case-insensitively, in stable insertion order.
func (r *productRepository) SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error) {
	var products []model.Product
	like := "%" + strings.ToLower(query) + "%"
	q := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", like).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&products).Error; err != nil {
		logger.Error("Failed to search products by name", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}
	return products, total, nil
}
