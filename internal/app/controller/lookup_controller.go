package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	apperrors "github.com/rbautista/tindahan-backend/internal/errors"
	"github.com/rbautista/tindahan-backend/internal/middleware"
	"github.com/rbautista/tindahan-backend/pkg/util"
)

type LookupController struct {
	lookupService service.LookupService
}

func NewLookupController(lookupService service.LookupService) *LookupController {
	return &LookupController{
		lookupService: lookupService,
	}
}

type ScanRequest struct {
	Barcode   string   `json:"barcode" binding:"required"`
	Symbology string   `json:"symbology" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func locationFromPair(lat, lng *float64) *service.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &service.Location{Latitude: *lat, Longitude: *lng}
}

// locationFromQuery reads optional latitude/longitude query parameters.
// Both must be present and numeric for a location to apply.
func locationFromQuery(c *gin.Context) *service.Location {
	latStr := c.Query("latitude")
	lngStr := c.Query("longitude")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	return &service.Location{Latitude: lat, Longitude: lng}
}

// Scan resolves a scanned barcode to a product and its nearby stores
// POST /api/v1/lookup/scan
func (ctrl *LookupController) Scan(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid scan request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Barcode and symbology are required")
		return
	}

	result, err := ctrl.lookupService.Scan(c.Request.Context(), req.Barcode, req.Symbology, locationFromPair(req.Latitude, req.Longitude))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedSymbology):
			log.Warn("Unsupported barcode symbology", map[string]interface{}{
				"symbology": req.Symbology,
			})
			apperrors.BadRequest(c, apperrors.ScanUnsupportedType, "Unsupported barcode type: "+req.Symbology)
			return
		case errors.Is(err, service.ErrEmptyBarcode):
			apperrors.BadRequest(c, apperrors.ScanEmptyBarcode, "Scanned barcode is empty")
			return
		case errors.Is(err, service.ErrProductNotFound):
			log.Info("Scan resolved no product", map[string]interface{}{
				"barcode": req.Barcode,
			})
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Scan lookup failed", err, map[string]interface{}{
			"barcode": req.Barcode,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "scan lookup")
		return
	}

	log.Info("Scan lookup completed", map[string]interface{}{
		"barcode":     req.Barcode,
		"store_count": len(result.Stores),
	})

	c.JSON(http.StatusOK, result)
}

// Search resolves a free-text or barcode query to a product and its stores
// GET /api/v1/lookup/search?query=...&latitude=...&longitude=...
func (ctrl *LookupController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("query")
	result, err := ctrl.lookupService.Search(c.Request.Context(), query, locationFromQuery(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuery):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Search query is required")
			return
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "No product matched the query")
			return
		}
		log.Error("Search lookup failed", err, map[string]interface{}{
			"query": query,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "search lookup")
		return
	}

	log.Info("Search lookup completed", map[string]interface{}{
		"query":       query,
		"store_count": len(result.Stores),
	})

	c.JSON(http.StatusOK, result)
}

// StoresForProduct lists the approved stores carrying a known barcode.
// An empty store list is a valid response, not an error.
// GET /api/v1/products/:barcode/stores?latitude=...&longitude=...
func (ctrl *LookupController) StoresForProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	barcode := c.Param("barcode")
	result, err := ctrl.lookupService.Locate(c.Request.Context(), barcode, locationFromQuery(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBarcode):
			apperrors.BadRequest(c, apperrors.ScanEmptyBarcode, "Barcode is required")
			return
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Store lookup failed", err, map[string]interface{}{
			"barcode": barcode,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "store lookup")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Symbologies lists the barcode types the scanner accepts
// GET /api/v1/lookup/symbologies
func (ctrl *LookupController) Symbologies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbologies": util.SupportedSymbologies(),
	})
}
