package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	apperrors "github.com/rbautista/tindahan-backend/internal/errors"
	"github.com/rbautista/tindahan-backend/internal/middleware"
)

type StoreController struct {
	storeService        service.StoreService
	storeProductService service.StoreProductService
}

func NewStoreController(storeService service.StoreService, storeProductService service.StoreProductService) *StoreController {
	return &StoreController{
		storeService:        storeService,
		storeProductService: storeProductService,
	}
}

type CreateStoreRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	ImageURL  string   `json:"image_url"`
}

type UpdateStoreRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	ImageURL  *string  `json:"image_url"`
}

type AssignProductRequest struct {
	Barcode      string   `json:"barcode" binding:"required"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	Stock        *int     `json:"stock" binding:"omitempty,min=0"`
	Availability *bool    `json:"availability"`
}

type AssignProductsRequest struct {
	Products []AssignProductRequest `json:"products" binding:"required,min=1,dive"`
}

type UpdateStoreProductRequest struct {
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	Stock        *int     `json:"stock" binding:"omitempty,min=0"`
	Availability *bool    `json:"availability"`
}

func parseStoreID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store ID")
		return 0, false
	}
	return uint(id), true
}

// CreateStore registers a store for the authenticated owner. New stores
// always start pending and only appear in lookups after admin approval.
// POST /api/v1/stores
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create store request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Store name is required")
		return
	}

	store := &model.Store{
		UserID:    &userID,
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		ImageURL:  req.ImageURL,
	}

	created, err := ctrl.storeService.CreateStore(store)
	if err != nil {
		log.Error("Failed to create store", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		return
	}

	log.Info("Store created", map[string]interface{}{
		"store_id": created.ID,
		"user_id":  userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully and is pending review",
		"store":   created,
	})
}

// GetStore returns a single store
// GET /api/v1/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	store, err := ctrl.storeService.GetStoreByID(storeID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to get store", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": store,
	})
}

// GetMyStores lists the authenticated owner's stores in every status
// GET /api/v1/owner/stores
func (ctrl *StoreController) GetMyStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	stores, err := ctrl.storeService.GetStoresByUserID(userID)
	if err != nil {
		log.Error("Failed to list owner stores", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list stores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// UpdateStore edits a store's details (owner or admin)
// PUT /api/v1/stores/:id
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update store request", map[string]interface{}{
			"store_id": storeID,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store details")
		return
	}

	store, err := ctrl.storeService.UpdateStore(c.Request.Context(), userID, middleware.IsAdmin(c), storeID, service.StoreMutation{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrStoreAccessDenied):
			apperrors.Forbidden(c, "You can only edit your own store")
			return
		}
		log.Error("Failed to update store", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"store":   store,
	})
}

// DeleteStore soft-deletes a store (owner or admin)
// DELETE /api/v1/stores/:id
func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	err := ctrl.storeService.DeleteStore(c.Request.Context(), userID, middleware.IsAdmin(c), storeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrStoreAccessDenied):
			apperrors.Forbidden(c, "You can only delete your own store")
			return
		}
		log.Error("Failed to delete store", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store deleted successfully",
	})
}

// AssignProducts upserts a batch of catalog entries for a store
// POST /api/v1/stores/:id/products
func (ctrl *StoreController) AssignProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var req AssignProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid assign products request", map[string]interface{}{
			"store_id": storeID,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "At least one product with a barcode is required")
		return
	}

	inputs := make([]service.StoreProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		inputs = append(inputs, service.StoreProductInput{
			Barcode:      p.Barcode,
			Price:        p.Price,
			Stock:        p.Stock,
			Availability: p.Availability,
		})
	}

	rows, err := ctrl.storeProductService.AssignProducts(c.Request.Context(), userID, middleware.IsAdmin(c), storeID, inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrStoreAccessDenied):
			apperrors.Forbidden(c, "You can only manage your own store's products")
			return
		case errors.Is(err, service.ErrUnknownBarcode):
			apperrors.BadRequest(c, apperrors.ProductNotFound, "One of the barcodes does not match a known product")
			return
		}
		log.Error("Failed to assign products", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "assign products")
		return
	}

	log.Info("Products assigned to store", map[string]interface{}{
		"store_id": storeID,
		"count":    len(rows),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":        "Products assigned successfully",
		"store_products": rows,
	})
}

// ListStoreProducts lists a store's catalog entries
// GET /api/v1/stores/:id/products
func (ctrl *StoreController) ListStoreProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	rows, err := ctrl.storeProductService.ListStoreProducts(storeID)
	if err != nil {
		log.Error("Failed to list store products", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list store products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store_products": rows,
		"count":          len(rows),
	})
}

// UpdateStoreProduct edits one catalog entry's price, stock or availability
// PUT /api/v1/stores/:id/products/:barcode
func (ctrl *StoreController) UpdateStoreProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var req UpdateStoreProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store product details")
		return
	}

	row, err := ctrl.storeProductService.UpdateStoreProduct(c.Request.Context(), userID, middleware.IsAdmin(c), storeID, service.StoreProductInput{
		Barcode:      c.Param("barcode"),
		Price:        req.Price,
		Stock:        req.Stock,
		Availability: req.Availability,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrStoreAccessDenied):
			apperrors.Forbidden(c, "You can only manage your own store's products")
			return
		case errors.Is(err, service.ErrStoreProductNotFound):
			apperrors.NotFound(c, apperrors.StoreProductNotFound, "This product is not assigned to the store")
			return
		}
		log.Error("Failed to update store product", err, map[string]interface{}{
			"store_id": storeID,
			"barcode":  c.Param("barcode"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Store product updated successfully",
		"store_product": row,
	})
}

// RemoveStoreProduct removes one catalog entry from a store
// DELETE /api/v1/stores/:id/products/:barcode
func (ctrl *StoreController) RemoveStoreProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	err := ctrl.storeProductService.RemoveStoreProduct(c.Request.Context(), userID, middleware.IsAdmin(c), storeID, c.Param("barcode"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrStoreAccessDenied):
			apperrors.Forbidden(c, "You can only manage your own store's products")
			return
		case errors.Is(err, service.ErrStoreProductNotFound):
			apperrors.NotFound(c, apperrors.StoreProductNotFound, "This product is not assigned to the store")
			return
		}
		log.Error("Failed to remove store product", err, map[string]interface{}{
			"store_id": storeID,
			"barcode":  c.Param("barcode"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "remove store product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store product removed successfully",
	})
}
