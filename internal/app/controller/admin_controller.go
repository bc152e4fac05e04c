package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	apperrors "github.com/rbautista/tindahan-backend/internal/errors"
	"github.com/rbautista/tindahan-backend/internal/middleware"
	"github.com/xuri/excelize/v2"
)

type AdminController struct {
	storeService service.StoreService
}

func NewAdminController(storeService service.StoreService) *AdminController {
	return &AdminController{
		storeService: storeService,
	}
}

type UpdateStoreStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// ListStores returns stores filtered by status for the review queue
// GET /api/v1/admin/stores?status=&search=
func (ctrl *AdminController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := c.Query("status")
	if status != "" {
		switch model.StoreStatus(status) {
		case model.StoreStatusPending, model.StoreStatusApproved, model.StoreStatusRejected:
		default:
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status must be pending, approved or rejected")
			return
		}
	}

	stores, err := ctrl.storeService.ListStores(repository.StoreFilter{
		Status: model.StoreStatus(status),
		Search: c.Query("search"),
	})
	if err != nil {
		log.Error("Failed to list stores for review", err, map[string]interface{}{
			"status": status,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list stores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// UpdateStoreStatus applies a review decision to a pending store
// PUT /api/v1/admin/stores/:id/status
func (ctrl *AdminController) UpdateStoreStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var req UpdateStoreStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid store status request", map[string]interface{}{
			"store_id": storeID,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status must be approved or rejected")
		return
	}

	store, err := ctrl.storeService.SetStoreStatus(c.Request.Context(), storeID, model.StoreStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrStoreAlreadyReviewed):
			apperrors.Conflict(c, apperrors.StoreAlreadyReviewed, "This store has already been reviewed")
			return
		case errors.Is(err, service.ErrInvalidStoreStatus):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status must be approved or rejected")
			return
		}
		log.Error("Failed to update store status", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store status")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info("Store review decision applied", map[string]interface{}{
		"store_id": storeID,
		"status":   store.Status,
		"admin_id": adminID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Store status updated successfully",
		"store":   store,
	})
}

// GetDashboard returns review-queue counts per status
// GET /api/v1/admin/dashboard
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	dashboard, err := ctrl.storeService.Dashboard()
	if err != nil {
		log.Error("Failed to build admin dashboard", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": dashboard,
	})
}

// ExportStores streams the store list as an XLSX workbook
// GET /api/v1/admin/stores/export?status=
func (ctrl *AdminController) ExportStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stores, err := ctrl.storeService.ListStores(repository.StoreFilter{
		Status: model.StoreStatus(c.Query("status")),
	})
	if err != nil {
		log.Error("Failed to load stores for export", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list stores")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"ID", "Name", "Address", "Latitude", "Longitude", "Status", "Owner ID", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, store := range stores {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), store.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), store.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), store.Address)
		if store.Latitude != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), *store.Latitude)
		}
		if store.Longitude != nil {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), *store.Longitude)
		}
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), string(store.Status))
		if store.UserID != nil {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *store.UserID)
		}
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), store.CreatedAt.Format(time.RFC3339))
	}

	filename := fmt.Sprintf("stores-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write store export", err, nil)
	}

	log.Info("Store export generated", map[string]interface{}{
		"count": len(stores),
	})
}
