package repository

import (
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreFilter struct {
	Status model.StoreStatus // empty matches all statuses
	Search string
}

type StoreStatusCount struct {
	Status model.StoreStatus
	Count  int64
}

type StoreRepository interface {
	Create(store *model.Store) error
	BulkCreate(stores []model.Store, batchSize int) error
	Update(store *model.Store) error
	Delete(id uint) error
	FindByID(id uint) (*model.Store, error)
	FindByUserID(userID uint) ([]model.Store, error)
	FindAll(filter StoreFilter) ([]model.Store, error)
	CountByStatus() ([]StoreStatusCount, error)
	UpdateStatus(id uint, status model.StoreStatus) error
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":    store.Name,
		"user_id": store.UserID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":    store.Name,
			"user_id": store.UserID,
		})
		return err
	}
	return nil
}

// BulkCreate inserts stores in batches, used by the seed importer
func (r *storeRepository) BulkCreate(stores []model.Store, batchSize int) error {
	if len(stores) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(stores, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create stores", err, map[string]interface{}{
			"count": len(stores),
		})
		return err
	}
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}
	return nil
}

func (r *storeRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Store{}, id).Error; err != nil {
		logger.Error("Failed to delete store from database", err, map[string]interface{}{
			"store_id": id,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByUserID(userID uint) ([]model.Store, error) {
	var stores []model.Store
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores by user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) FindAll(filter StoreFilter) ([]model.Store, error) {
	query := r.db.Model(&model.Store{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var stores []model.Store
	if err := query.Order("created_at DESC").Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores", err, map[string]interface{}{
			"status": filter.Status,
			"search": filter.Search,
		})
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) CountByStatus() ([]StoreStatusCount, error) {
	var counts []StoreStatusCount
	if err := r.db.Model(&model.Store{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		logger.Error("Failed to count stores by status", err)
		return nil, err
	}
	return counts, nil
}

func (r *storeRepository) UpdateStatus(id uint, status model.StoreStatus) error {
	result := r.db.Model(&model.Store{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update store status", result.Error, map[string]interface{}{
			"store_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
