package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/rbautista/tindahan-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLookupControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	storeProductRepo := repository.NewStoreProductRepository(testDB)
	availability := service.NewAvailabilityService(storeProductRepo, nil)
	lookupService := service.NewLookupService(productRepo, availability)
	controller := NewLookupController(lookupService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Lookup routes carry optional auth in production; guests must
	// still pass through untouched
	optionalAuth := middleware.NewAuthMiddleware("lookup-test-secret").OptionalAuthenticate()
	router.POST("/lookup/scan", optionalAuth, controller.Scan)
	router.GET("/lookup/search", optionalAuth, controller.Search)
	router.GET("/lookup/symbologies", optionalAuth, controller.Symbologies)
	router.GET("/products/:barcode/stores", optionalAuth, controller.StoresForProduct)

	return router, testDB
}

func seedLookupFixture(t *testing.T, testDB *gorm.DB) {
	lat, lng := 14.60, 120.98
	store := &model.Store{Name: "Aling Nena", Address: "Quezon City", Status: model.StoreStatusApproved, Latitude: &lat, Longitude: &lng}
	require.NoError(t, testDB.Create(store).Error)
	require.NoError(t, testDB.Create(&model.Product{Barcode: "4806502", Name: "Pancit Canton"}).Error)
	price := 15.0
	stock := 12
	require.NoError(t, testDB.Create(&model.StoreProduct{
		StoreID:        store.ID,
		ProductBarcode: "4806502",
		Price:          &price,
		Stock:          &stock,
	}).Error)
}

func TestLookupController_Scan_Success(t *testing.T) {
	router, testDB := setupLookupControllerTest(t)
	seedLookupFixture(t, testDB)

	body, _ := json.Marshal(gin.H{
		"barcode":   "4806502",
		"symbology": "ean13",
		"latitude":  14.60,
		"longitude": 120.98,
	})
	req := httptest.NewRequest(http.MethodPost, "/lookup/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	product := response["product"].(map[string]interface{})
	assert.Equal(t, "Pancit Canton", product["name"])

	stores := response["stores"].([]interface{})
	require.Len(t, stores, 1)
	first := stores[0].(map[string]interface{})
	assert.Equal(t, "Aling Nena", first["name"])
	assert.Equal(t, "₱15.00", first["price_label"])
	assert.Equal(t, "Available", first["availability_label"])
	assert.Equal(t, "0 m", first["distance_label"])
}

func TestLookupController_Scan_UnsupportedSymbology(t *testing.T) {
	router, testDB := setupLookupControllerTest(t)
	seedLookupFixture(t, testDB)

	body, _ := json.Marshal(gin.H{
		"barcode":   "4806502",
		"symbology": "maxicode",
	})
	req := httptest.NewRequest(http.MethodPost, "/lookup/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "SCAN_UNSUPPORTED_TYPE", response["error"])
}

func TestLookupController_Scan_ProductNotFound(t *testing.T) {
	router, _ := setupLookupControllerTest(t)

	body, _ := json.Marshal(gin.H{
		"barcode":   "0000000",
		"symbology": "ean13",
	})
	req := httptest.NewRequest(http.MethodPost, "/lookup/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "PRODUCT_NOT_FOUND", response["error"])
}

func TestLookupController_Scan_MissingFields(t *testing.T) {
	router, _ := setupLookupControllerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/lookup/scan", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupController_Search_WithoutLocation(t *testing.T) {
	router, testDB := setupLookupControllerTest(t)
	seedLookupFixture(t, testDB)

	req := httptest.NewRequest(http.MethodGet, "/lookup/search?query=pancit", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	stores := response["stores"].([]interface{})
	require.Len(t, stores, 1)
	first := stores[0].(map[string]interface{})
	assert.Equal(t, "Distance not available", first["distance_label"])
}

func TestLookupController_Search_EmptyQuery(t *testing.T) {
	router, _ := setupLookupControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/lookup/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupController_StoresForProduct_EmptyListIsOK(t *testing.T) {
	router, testDB := setupLookupControllerTest(t)
	require.NoError(t, testDB.Create(&model.Product{Barcode: "5000", Name: "Lonely Product"}).Error)

	req := httptest.NewRequest(http.MethodGet, "/products/5000/stores", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	stores := response["stores"].([]interface{})
	assert.Empty(t, stores)
}

func TestLookupController_Symbologies(t *testing.T) {
	router, _ := setupLookupControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/lookup/symbologies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	symbologies := response["symbologies"].([]interface{})
	assert.Len(t, symbologies, 13)
}
