package repository

import (
	"context"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreProductRepository interface {
	Upsert(sp *model.StoreProduct) error
	Update(sp *model.StoreProduct) error
	Delete(storeID uint, barcode string) error
	FindByStoreID(storeID uint) ([]model.StoreProduct, error)
	FindByStoreAndBarcode(storeID uint, barcode string) (*model.StoreProduct, error)
	FindApprovedByBarcode(ctx context.Context, barcode string) ([]model.StoreProduct, error)
}

type storeProductRepository struct {
	db *gorm.DB
}

func NewStoreProductRepository(db *gorm.DB) StoreProductRepository {
	return &storeProductRepository{db: db}
}

// Upsert inserts or refreshes the single row for a (store, barcode) pair
func (r *storeProductRepository) Upsert(sp *model.StoreProduct) error {
	logger.Debug("Upserting store product", map[string]interface{}{
		"store_id": sp.StoreID,
		"barcode":  sp.ProductBarcode,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_barcode"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "stock", "availability", "updated_at"}),
	}).Create(sp).Error
	if err != nil {
		logger.Error("Failed to upsert store product", err, map[string]interface{}{
			"store_id": sp.StoreID,
			"barcode":  sp.ProductBarcode,
		})
		return err
	}
	return nil
}

func (r *storeProductRepository) Update(sp *model.StoreProduct) error {
	if err := r.db.Save(sp).Error; err != nil {
		logger.Error("Failed to update store product", err, map[string]interface{}{
			"store_id": sp.StoreID,
			"barcode":  sp.ProductBarcode,
		})
		return err
	}
	return nil
}

func (r *storeProductRepository) Delete(storeID uint, barcode string) error {
	result := r.db.
		Where("store_id = ? AND product_barcode = ?", storeID, barcode).
		Delete(&model.StoreProduct{})
	if result.Error != nil {
		logger.Error("Failed to delete store product", result.Error, map[string]interface{}{
			"store_id": storeID,
			"barcode":  barcode,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *storeProductRepository) FindByStoreID(storeID uint) ([]model.StoreProduct, error) {
	var rows []model.StoreProduct
	if err := r.db.
		Where("store_id = ?", storeID).
		Preload("Product").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		logger.Error("Failed to list store products", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}
	return rows, nil
}

func (r *storeProductRepository) FindByStoreAndBarcode(storeID uint, barcode string) (*model.StoreProduct, error) {
	var row model.StoreProduct
	if err := r.db.
		Where("store_id = ? AND product_barcode = ?", storeID, barcode).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindApprovedByBarcode returns the stock rows for a barcode joined with their
// owning store, restricted to approved stores that carry coordinates. Excluded
// stores are dropped entirely rather than marked unavailable; an empty slice
// is a valid result.
func (r *storeProductRepository) FindApprovedByBarcode(ctx context.Context, barcode string) ([]model.StoreProduct, error) {
	var rows []model.StoreProduct
	err := r.db.WithContext(ctx).
		Joins("JOIN stores ON stores.id = store_products.store_id AND stores.deleted_at IS NULL").
		Where("store_products.product_barcode = ?", barcode).
		Where("stores.status = ?", model.StoreStatusApproved).
		Where("stores.latitude IS NOT NULL").
		Where("stores.longitude IS NOT NULL").
		Preload("Store").
		Order("store_products.id ASC").
		Find(&rows).Error
	if err != nil {
		logger.Error("Failed to find approved stores for barcode", err, map[string]interface{}{
			"barcode": barcode,
		})
		return nil, err
	}
	return rows, nil
}
