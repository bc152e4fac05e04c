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
	ErrStoreProductNotFound = errors.New("store product not found")
	ErrUnknownBarcode       = errors.New("unknown product barcode")
)

type StoreProductInput struct {
	Barcode      string
	Price        *float64
	Stock        *int
	Availability *bool
}

// StoreProductService manages a store's catalog entries. Assigning the
// same barcode twice updates the existing row; a (store, barcode) pair is
// always a single row.
type StoreProductService interface {
	AssignProducts(ctx context.Context, userID uint, isAdmin bool, storeID uint, inputs []StoreProductInput) ([]model.StoreProduct, error)
	UpdateStoreProduct(ctx context.Context, userID uint, isAdmin bool, storeID uint, input StoreProductInput) (*model.StoreProduct, error)
	RemoveStoreProduct(ctx context.Context, userID uint, isAdmin bool, storeID uint, barcode string) error
	ListStoreProducts(storeID uint) ([]model.StoreProduct, error)
}

type storeProductService struct {
	storeProductRepo repository.StoreProductRepository
	storeRepo        repository.StoreRepository
	productRepo      repository.ProductRepository
	availability     AvailabilityService
}

func NewStoreProductService(
	storeProductRepo repository.StoreProductRepository,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	availability AvailabilityService,
) StoreProductService {
	return &storeProductService{
		storeProductRepo: storeProductRepo,
		storeRepo:        storeRepo,
		productRepo:      productRepo,
		availability:     availability,
	}
}

func (s *storeProductService) guardStore(userID uint, isAdmin bool, storeID uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !isAdmin && (store.UserID == nil || *store.UserID != userID) {
		return nil, ErrStoreAccessDenied
	}
	return store, nil
}

// AssignProducts upserts a batch of catalog entries for a store. Each
// barcode must reference an existing product.
func (s *storeProductService) AssignProducts(ctx context.Context, userID uint, isAdmin bool, storeID uint, inputs []StoreProductInput) ([]model.StoreProduct, error) {
	if _, err := s.guardStore(userID, isAdmin, storeID); err != nil {
		return nil, err
	}

	results := make([]model.StoreProduct, 0, len(inputs))
	for _, input := range inputs {
		barcode := strings.TrimSpace(input.Barcode)
		if barcode == "" {
			return nil, ErrUnknownBarcode
		}
		if _, err := s.productRepo.FindByBarcode(ctx, barcode); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownBarcode
			}
			return nil, err
		}

		row := &model.StoreProduct{
			StoreID:        storeID,
			ProductBarcode: barcode,
			Price:          input.Price,
			Stock:          input.Stock,
			Availability:   input.Availability,
		}
		if err := s.storeProductRepo.Upsert(row); err != nil {
			return nil, err
		}

		saved, err := s.storeProductRepo.FindByStoreAndBarcode(storeID, barcode)
		if err != nil {
			return nil, err
		}
		results = append(results, *saved)

		s.availability.Flush(ctx, barcode)
	}

	logger.Info("Store products assigned", map[string]interface{}{
		"store_id": storeID,
		"count":    len(results),
	})
	return results, nil
}

func (s *storeProductService) UpdateStoreProduct(ctx context.Context, userID uint, isAdmin bool, storeID uint, input StoreProductInput) (*model.StoreProduct, error) {
	if _, err := s.guardStore(userID, isAdmin, storeID); err != nil {
		return nil, err
	}

	barcode := strings.TrimSpace(input.Barcode)
	row, err := s.storeProductRepo.FindByStoreAndBarcode(storeID, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreProductNotFound
		}
		return nil, err
	}

	if input.Price != nil {
		row.Price = input.Price
	}
	if input.Stock != nil {
		row.Stock = input.Stock
	}
	if input.Availability != nil {
		row.Availability = input.Availability
	}

	if err := s.storeProductRepo.Update(row); err != nil {
		return nil, err
	}

	s.availability.Flush(ctx, barcode)

	logger.Info("Store product updated", map[string]interface{}{
		"store_id": storeID,
		"barcode":  barcode,
	})
	return row, nil
}

func (s *storeProductService) RemoveStoreProduct(ctx context.Context, userID uint, isAdmin bool, storeID uint, barcode string) error {
	if _, err := s.guardStore(userID, isAdmin, storeID); err != nil {
		return err
	}

	barcode = strings.TrimSpace(barcode)
	if err := s.storeProductRepo.Delete(storeID, barcode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreProductNotFound
		}
		return err
	}

	s.availability.Flush(ctx, barcode)

	logger.Info("Store product removed", map[string]interface{}{
		"store_id": storeID,
		"barcode":  barcode,
	})
	return nil
}

func (s *storeProductService) ListStoreProducts(storeID uint) ([]model.StoreProduct, error) {
	return s.storeProductRepo.FindByStoreID(storeID)
}
