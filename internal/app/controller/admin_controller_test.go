package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupAdminControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storeRepo := repository.NewStoreRepository(testDB)
	storeProductRepo := repository.NewStoreProductRepository(testDB)
	availability := service.NewAvailabilityService(storeProductRepo, nil)
	storeService := service.NewStoreService(storeRepo, availability)
	controller := NewAdminController(storeService)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "not-a-real-hash",
		Username:     "admin",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, testDB.Create(admin).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", admin.ID)
		c.Set("user_role", admin.Role)
		c.Next()
	})
	router.GET("/admin/stores", controller.ListStores)
	router.GET("/admin/stores/export", controller.ExportStores)
	router.PUT("/admin/stores/:id/status", controller.UpdateStoreStatus)
	router.GET("/admin/dashboard", controller.GetDashboard)

	return router, testDB
}

func seedStoreWithStatus(t *testing.T, testDB *gorm.DB, name string, status model.StoreStatus) *model.Store {
	store := &model.Store{
		Name:    name,
		Address: "Quezon City",
		Status:  status,
	}
	require.NoError(t, testDB.Create(store).Error)
	return store
}

func TestAdminController_UpdateStoreStatus_Approve(t *testing.T) {
	router, testDB := setupAdminControllerTest(t)
	store := seedStoreWithStatus(t, testDB, "Pending Store", model.StoreStatusPending)

	body, _ := json.Marshal(gin.H{"status": "approved"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/stores/%d/status", store.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	reviewed := response["store"].(map[string]interface{})
	assert.Equal(t, "approved", reviewed["status"])
}

func TestAdminController_UpdateStoreStatus_AlreadyReviewed(t *testing.T) {
	router, testDB := setupAdminControllerTest(t)
	store := seedStoreWithStatus(t, testDB, "Reviewed Store", model.StoreStatusApproved)

	body, _ := json.Marshal(gin.H{"status": "rejected"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/stores/%d/status", store.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "STORE_ALREADY_REVIEWED", response["error"])
}

func TestAdminController_UpdateStoreStatus_InvalidTarget(t *testing.T) {
	router, testDB := setupAdminControllerTest(t)
	store := seedStoreWithStatus(t, testDB, "Pending Store", model.StoreStatusPending)

	// pending is not a review decision, the binding rejects it
	body, _ := json.Marshal(gin.H{"status": "pending"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/stores/%d/status", store.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminController_ListStores_FiltersByStatus(t *testing.T) {
	router, testDB := setupAdminControllerTest(t)
	seedStoreWithStatus(t, testDB, "Pending One", model.StoreStatusPending)
	seedStoreWithStatus(t, testDB, "Pending Two", model.StoreStatusPending)
	seedStoreWithStatus(t, testDB, "Approved One", model.StoreStatusApproved)

	req := httptest.NewRequest(http.MethodGet, "/admin/stores?status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])

	req = httptest.NewRequest(http.MethodGet, "/admin/stores?status=bogus", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminController_GetDashboard(t *testing.T) {
	router, testDB := setupAdminControllerTest(t)
	seedStoreWithStatus(t, testDB, "Pending One", model.StoreStatusPending)
	seedStoreWithStatus(t, testDB, "Approved One", model.StoreStatusApproved)
	seedStoreWithStatus(t, testDB, "Rejected One", model.StoreStatusRejected)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	dashboard := response["dashboard"].(map[string]interface{})
	assert.Equal(t, float64(1), dashboard["pending_stores"])
	assert.Equal(t, float64(1), dashboard["approved_stores"])
	assert.Equal(t, float64(1), dashboard["rejected_stores"])
}

func TestAdminController_ExportStores(t *testing.T) {
	router, testDB := setupAdminControllerTest(t)
	seedStoreWithStatus(t, testDB, "Exported Store", model.StoreStatusApproved)

	req := httptest.NewRequest(http.MethodGet, "/admin/stores/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "stores-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Exported Store", rows[1][1])
}
