package service

import (
	"context"
	"errors"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound        = errors.New("store not found")
	ErrStoreAccessDenied    = errors.New("store access denied")
	ErrStoreAlreadyReviewed = errors.New("store already reviewed")
	ErrInvalidStoreStatus   = errors.New("invalid store status")
)

type StoreMutation struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
	ImageURL  *string
}

type StoreDashboard struct {
	PendingStores  int64 `json:"pending_stores"`
	ApprovedStores int64 `json:"approved_stores"`
	RejectedStores int64 `json:"rejected_stores"`
}

// StoreService owns the store lifecycle: owners create stores in pending
// state, administrators alone move them to approved or rejected, and only
// approved stores surface in the lookup flow.
type StoreService interface {
	CreateStore(store *model.Store) (*model.Store, error)
	GetStoreByID(id uint) (*model.Store, error)
	GetStoresByUserID(userID uint) ([]model.Store, error)
	ListStores(filter repository.StoreFilter) ([]model.Store, error)
	UpdateStore(ctx context.Context, userID uint, isAdmin bool, storeID uint, input StoreMutation) (*model.Store, error)
	DeleteStore(ctx context.Context, userID uint, isAdmin bool, storeID uint) error
	SetStoreStatus(ctx context.Context, storeID uint, status model.StoreStatus) (*model.Store, error)
	Dashboard() (*StoreDashboard, error)
}

type storeService struct {
	storeRepo    repository.StoreRepository
	availability AvailabilityService
}

func NewStoreService(storeRepo repository.StoreRepository, availability AvailabilityService) StoreService {
	return &storeService{
		storeRepo:    storeRepo,
		availability: availability,
	}
}

// CreateStore registers a store. The status is always forced to pending;
// visibility is granted only through an admin review.
func (s *storeService) CreateStore(store *model.Store) (*model.Store, error) {
	store.Status = model.StoreStatusPending

	logger.Info("Creating store", map[string]interface{}{
		"name":    store.Name,
		"user_id": store.UserID,
	})

	if err := s.storeRepo.Create(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *storeService) GetStoreByID(id uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) GetStoresByUserID(userID uint) ([]model.Store, error) {
	return s.storeRepo.FindByUserID(userID)
}

func (s *storeService) ListStores(filter repository.StoreFilter) ([]model.Store, error) {
	return s.storeRepo.FindAll(filter)
}

// UpdateStore edits store details. Only the owning account or an admin
// may edit; editing never changes the approval status.
func (s *storeService) UpdateStore(ctx context.Context, userID uint, isAdmin bool, storeID uint, input StoreMutation) (*model.Store, error) {
	store, err := s.GetStoreByID(storeID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && (store.UserID == nil || *store.UserID != userID) {
		logger.Warn("Store update denied", map[string]interface{}{
			"store_id": storeID,
			"user_id":  userID,
		})
		return nil, ErrStoreAccessDenied
	}

	coordinatesChanged := false
	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.Latitude != nil {
		store.Latitude = input.Latitude
		coordinatesChanged = true
	}
	if input.Longitude != nil {
		store.Longitude = input.Longitude
		coordinatesChanged = true
	}
	if input.ImageURL != nil {
		store.ImageURL = *input.ImageURL
	}

	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}
	if coordinatesChanged {
		s.availability.FlushStore(ctx, store.ID)
	}

	logger.Info("Store updated", map[string]interface{}{
		"store_id": store.ID,
	})
	return store, nil
}

func (s *storeService) DeleteStore(ctx context.Context, userID uint, isAdmin bool, storeID uint) error {
	store, err := s.GetStoreByID(storeID)
	if err != nil {
		return err
	}
	if !isAdmin && (store.UserID == nil || *store.UserID != userID) {
		return ErrStoreAccessDenied
	}

	// Flush before the rows disappear so the barcode list is still readable
	s.availability.FlushStore(ctx, storeID)

	if err := s.storeRepo.Delete(storeID); err != nil {
		return err
	}

	logger.Info("Store deleted", map[string]interface{}{
		"store_id": storeID,
	})
	return nil
}

// SetStoreStatus applies an admin review decision. Only pending stores can
// be transitioned, and only to approved or rejected.
func (s *storeService) SetStoreStatus(ctx context.Context, storeID uint, status model.StoreStatus) (*model.Store, error) {
	if status != model.StoreStatusApproved && status != model.StoreStatusRejected {
		return nil, ErrInvalidStoreStatus
	}

	store, err := s.GetStoreByID(storeID)
	if err != nil {
		return nil, err
	}
	if store.Status != model.StoreStatusPending {
		logger.Warn("Store status transition rejected", map[string]interface{}{
			"store_id": storeID,
			"current":  store.Status,
			"target":   status,
		})
		return nil, ErrStoreAlreadyReviewed
	}

	if err := s.storeRepo.UpdateStatus(storeID, status); err != nil {
		return nil, err
	}
	store.Status = status

	// Approval changes which stores the lookup flow may see
	s.availability.FlushStore(ctx, storeID)

	logger.Info("Store status updated", map[string]interface{}{
		"store_id": storeID,
		"status":   status,
	})
	return store, nil
}

func (s *storeService) Dashboard() (*StoreDashboard, error) {
	counts, err := s.storeRepo.CountByStatus()
	if err != nil {
		return nil, err
	}

	dashboard := &StoreDashboard{}
	for _, c := range counts {
		switch c.Status {
		case model.StoreStatusPending:
			dashboard.PendingStores = c.Count
		case model.StoreStatusApproved:
			dashboard.ApprovedStores = c.Count
		case model.StoreStatusRejected:
			dashboard.RejectedStores = c.Count
		}
	}
	return dashboard, nil
}
