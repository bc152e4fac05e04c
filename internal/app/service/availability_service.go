package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const availabilityCacheTTL = 5 * time.Minute

// AvailabilityService answers "which approved stores carry this barcode".
// Results are cached per barcode and concurrent misses for the same barcode
// are coalesced into a single database fetch. Mutating flows must call
// Flush so stale rows never outlive an edit.
type AvailabilityService interface {
	FindStores(ctx context.Context, barcode string) ([]model.StoreProduct, error)
	Flush(ctx context.Context, barcode string)
	FlushStore(ctx context.Context, storeID uint)
}

type availabilityService struct {
	storeProductRepo repository.StoreProductRepository
	cache            *redis.Client // nil disables caching
	group            singleflight.Group
}

// NewAvailabilityService creates the availability query service.
// Pass a nil cache client to run without Redis (tests, local dev).
func NewAvailabilityService(storeProductRepo repository.StoreProductRepository, cache *redis.Client) AvailabilityService {
	return &availabilityService{
		storeProductRepo: storeProductRepo,
		cache:            cache,
	}
}

func availabilityCacheKey(barcode string) string {
	return fmt.Sprintf("availability:%s", barcode)
}

// FindStores returns the approved-store stock rows for a barcode.
// An empty slice is a valid result meaning no approved store currently
// stocks the product; it is never reported as an error.
func (s *availabilityService) FindStores(ctx context.Context, barcode string) ([]model.StoreProduct, error) {
	if s.cache != nil {
		if rows, ok := s.readCache(ctx, barcode); ok {
			logger.Debug("Availability cache hit", map[string]interface{}{
				"barcode": barcode,
				"count":   len(rows),
			})
			return rows, nil
		}
	}

	// Coalesce concurrent misses for the same barcode into one fetch
	result, err, _ := s.group.Do(barcode, func() (interface{}, error) {
		rows, err := s.storeProductRepo.FindApprovedByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []model.StoreProduct{}
		}
		s.writeCache(ctx, barcode, rows)
		return rows, nil
	})
	if err != nil {
		logger.Error("Failed to fetch availability", err, map[string]interface{}{
			"barcode": barcode,
		})
		return nil, err
	}

	return result.([]model.StoreProduct), nil
}

// Flush drops the cached rows for one barcode and forgets any in-flight
// coalesced fetch so the next caller sees fresh data.
func (s *availabilityService) Flush(ctx context.Context, barcode string) {
	s.group.Forget(barcode)
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, availabilityCacheKey(barcode)).Err(); err != nil {
		logger.Warn("Failed to flush availability cache", map[string]interface{}{
			"barcode": barcode,
			"error":   err.Error(),
		})
	}
}

// FlushStore invalidates every barcode a store carries, used when the
// store itself changes (status transition, coordinate edit, deletion).
func (s *availabilityService) FlushStore(ctx context.Context, storeID uint) {
	rows, err := s.storeProductRepo.FindByStoreID(storeID)
	if err != nil {
		logger.Warn("Failed to enumerate store barcodes for cache flush", map[string]interface{}{
			"store_id": storeID,
			"error":    err.Error(),
		})
		return
	}
	for _, row := range rows {
		s.Flush(ctx, row.ProductBarcode)
	}
}

func (s *availabilityService) readCache(ctx context.Context, barcode string) ([]model.StoreProduct, bool) {
	data, err := s.cache.Get(ctx, availabilityCacheKey(barcode)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Availability cache read failed", map[string]interface{}{
				"barcode": barcode,
				"error":   err.Error(),
			})
		}
		return nil, false
	}

	var rows []model.StoreProduct
	if err := json.Unmarshal(data, &rows); err != nil {
		logger.Warn("Availability cache entry corrupt, dropping", map[string]interface{}{
			"barcode": barcode,
		})
		s.cache.Del(ctx, availabilityCacheKey(barcode))
		return nil, false
	}
	return rows, true
}

func (s *availabilityService) writeCache(ctx context.Context, barcode string, rows []model.StoreProduct) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, availabilityCacheKey(barcode), data, availabilityCacheTTL).Err(); err != nil {
		logger.Warn("Availability cache write failed", map[string]interface{}{
			"barcode": barcode,
			"error":   err.Error(),
		})
	}
}
