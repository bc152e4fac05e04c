package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"github.com/rbautista/tindahan-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrEmptyQuery           = errors.New("empty lookup query")
	ErrEmptyBarcode         = errors.New("empty barcode")
	ErrUnsupportedSymbology = errors.New("unsupported barcode symbology")
)

const (
	priceNotAvailable    = "Price not available"
	distanceNotAvailable = "Distance not available"
	addressNotAvailable  = "Address not available"
	labelAvailable       = "Available"
	labelOutOfStock      = "Out of Stock"
)

const searchResultLimit = 20

// Location is an ephemeral user position captured once per lookup
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StoreResult is the display-ready record for one store carrying the product
type StoreResult struct {
	StoreID           uint     `json:"store_id"`
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	Price             *float64 `json:"price"`
	PriceLabel        string   `json:"price_label"`
	Stock             *int     `json:"stock"`
	Available         bool     `json:"available"`
	AvailabilityLabel string   `json:"availability_label"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	DistanceLabel     string   `json:"distance_label"`
}

// LookupResult bundles the resolved product with its ranked store list
type LookupResult struct {
	Product *model.Product `json:"product"`
	Stores  []StoreResult  `json:"stores"`
}

// LookupService runs the scan/search flow: resolve a barcode or text query
// to a canonical product, query availability across approved stores, rank
// by distance from the user and shape the rows for display.
type LookupService interface {
	Resolve(ctx context.Context, query string) (*model.Product, error)
	ResolveScan(ctx context.Context, barcode, symbology string) (*model.Product, error)
	Locate(ctx context.Context, barcode string, loc *Location) (*LookupResult, error)
	Search(ctx context.Context, query string, loc *Location) (*LookupResult, error)
	Scan(ctx context.Context, barcode, symbology string, loc *Location) (*LookupResult, error)
}

type lookupService struct {
	productRepo  repository.ProductRepository
	availability AvailabilityService
}

func NewLookupService(productRepo repository.ProductRepository, availability AvailabilityService) LookupService {
	return &lookupService{
		productRepo:  productRepo,
		availability: availability,
	}
}

// Resolve maps a barcode or free-text query to a single canonical product.
// A barcode-exact match wins; otherwise the first name-substring match in
// arrival order. Duplicate hits across both queries keep the first occurrence.
func (s *lookupService) Resolve(ctx context.Context, query string) (*model.Product, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}

	logger.Debug("Resolving lookup query", map[string]interface{}{
		"query": trimmed,
	})

	var candidates []model.Product

	barcodeMatch, err := s.productRepo.FindByBarcode(ctx, trimmed)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Barcode lookup failed", err, map[string]interface{}{
			"query": trimmed,
		})
		return nil, err
	}
	if barcodeMatch != nil {
		candidates = append(candidates, *barcodeMatch)
	}

	nameMatches, err := s.productRepo.SearchByName(ctx, trimmed, searchResultLimit)
	if err != nil {
		logger.Error("Name lookup failed", err, map[string]interface{}{
			"query": trimmed,
		})
		return nil, err
	}
	candidates = append(candidates, nameMatches...)

	deduped := dedupeProducts(candidates)
	if len(deduped) == 0 {
		logger.Info("No product matched lookup query", map[string]interface{}{
			"query": trimmed,
		})
		return nil, ErrProductNotFound
	}

	return &deduped[0], nil
}

// ResolveScan maps a scanned payload to a product. The symbology is
// validated first; an unsupported type is a client error, not a miss.
func (s *lookupService) ResolveScan(ctx context.Context, barcode, symbology string) (*model.Product, error) {
	if !util.IsSupportedSymbology(symbology) {
		logger.Warn("Rejected unsupported barcode symbology", map[string]interface{}{
			"symbology": symbology,
		})
		return nil, ErrUnsupportedSymbology
	}

	trimmed := strings.TrimSpace(barcode)
	if trimmed == "" {
		return nil, ErrEmptyBarcode
	}

	product, err := s.productRepo.FindByBarcode(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Locate runs availability, ranking and presentation for a known barcode.
// A result with zero stores is a valid outcome, not an error.
func (s *lookupService) Locate(ctx context.Context, barcode string, loc *Location) (*LookupResult, error) {
	product, err := s.productRepo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.locateProduct(ctx, product, loc)
}

// Search resolves a free-text or barcode query, then locates stores
func (s *lookupService) Search(ctx context.Context, query string, loc *Location) (*LookupResult, error) {
	product, err := s.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.locateProduct(ctx, product, loc)
}

// Scan resolves a scanned barcode, then locates stores
func (s *lookupService) Scan(ctx context.Context, barcode, symbology string, loc *Location) (*LookupResult, error) {
	product, err := s.ResolveScan(ctx, barcode, symbology)
	if err != nil {
		return nil, err
	}
	return s.locateProduct(ctx, product, loc)
}

func (s *lookupService) locateProduct(ctx context.Context, product *model.Product, loc *Location) (*LookupResult, error) {
	rows, err := s.availability.FindStores(ctx, product.Barcode)
	if err != nil {
		return nil, err
	}

	results := presentStores(rows, loc)
	if loc != nil {
		rankByDistance(results)
	}

	logger.Info("Lookup completed", map[string]interface{}{
		"barcode":     product.Barcode,
		"store_count": len(results),
		"ranked":      loc != nil,
	})

	return &LookupResult{
		Product: product,
		Stores:  results,
	}, nil
}

// presentStores shapes raw stock rows into display records. Rows whose
// store is missing an identifier or coordinates are dropped rather than
// rendered with blank fields.
func presentStores(rows []model.StoreProduct, loc *Location) []StoreResult {
	results := make([]StoreResult, 0, len(rows))
	for _, row := range rows {
		store := row.Store
		if store.ID == 0 || !store.HasCoordinates() {
			continue
		}

		result := StoreResult{
			StoreID:       store.ID,
			Name:          store.Name,
			Address:       store.Address,
			Latitude:      *store.Latitude,
			Longitude:     *store.Longitude,
			Price:         row.Price,
			Stock:         row.Stock,
			Available:     row.EffectiveAvailability(),
			PriceLabel:    priceNotAvailable,
			DistanceLabel: distanceNotAvailable,
		}
		if result.Name == "" {
			result.Name = "Unknown Store"
		}
		if result.Address == "" {
			result.Address = addressNotAvailable
		}
		if row.Price != nil {
			result.PriceLabel = fmt.Sprintf("₱%.2f", *row.Price)
		}
		if result.Available {
			result.AvailabilityLabel = labelAvailable
		} else {
			result.AvailabilityLabel = labelOutOfStock
		}
		if loc != nil {
			dist := util.CalculateDistance(loc.Latitude, loc.Longitude, *store.Latitude, *store.Longitude)
			result.DistanceKm = &dist
			result.DistanceLabel = util.FormatDistance(dist)
		}

		results = append(results, result)
	}
	return results
}

// rankByDistance sorts results ascending by distance. The sort is stable
// so ties keep their original query order.
func rankByDistance(results []StoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DistanceKm == nil || results[j].DistanceKm == nil {
			return false
		}
		return *results[i].DistanceKm < *results[j].DistanceKm
	})
}

// dedupeProducts removes duplicate product identifiers, keeping the first
// occurrence so barcode-exact matches outrank name matches.
func dedupeProducts(products []model.Product) []model.Product {
	seen := make(map[uint]struct{}, len(products))
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
