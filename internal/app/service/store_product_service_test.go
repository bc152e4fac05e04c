package service

import (
	"context"
	"testing"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStoreProductServiceTest(t *testing.T) (StoreProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	storeProductRepo := repository.NewStoreProductRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	availability := NewAvailabilityService(storeProductRepo, nil)
	return NewStoreProductService(storeProductRepo, storeRepo, productRepo, availability), testDB
}

func TestStoreProductService_AssignProducts_UpsertKeepsOneRow(t *testing.T) {
	svc, testDB := setupStoreProductServiceTest(t)

	owner := createUser(t, testDB, "owner@example.com", model.RoleOwner)
	store := createStore(t, testDB, "Store", model.StoreStatusApproved, floatPtr(14.6), floatPtr(121.0))
	store.UserID = &owner.ID
	require.NoError(t, testDB.Save(store).Error)
	createProduct(t, testDB, "2000", "Rice")

	ctx := context.Background()

	rows, err := svc.AssignProducts(ctx, owner.ID, false, store.ID, []StoreProductInput{
		{Barcode: "2000", Price: floatPtr(52), Stock: intPtr(10)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 52.0, *rows[0].Price)

	// Assigning the same barcode again updates in place
	rows, err = svc.AssignProducts(ctx, owner.ID, false, store.ID, []StoreProductInput{
		{Barcode: "2000", Price: floatPtr(55), Stock: intPtr(8)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 55.0, *rows[0].Price)
	assert.Equal(t, 8, *rows[0].Stock)

	var count int64
	require.NoError(t, testDB.Model(&model.StoreProduct{}).
		Where("store_id = ? AND product_barcode = ?", store.ID, "2000").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStoreProductService_AssignProducts_UnknownBarcode(t *testing.T) {
	svc, testDB := setupStoreProductServiceTest(t)

	owner := createUser(t, testDB, "owner@example.com", model.RoleOwner)
	store := createStore(t, testDB, "Store", model.StoreStatusApproved, nil, nil)
	store.UserID = &owner.ID
	require.NoError(t, testDB.Save(store).Error)

	_, err := svc.AssignProducts(context.Background(), owner.ID, false, store.ID, []StoreProductInput{
		{Barcode: "does-not-exist"},
	})
	assert.ErrorIs(t, err, ErrUnknownBarcode)

	_, err = svc.AssignProducts(context.Background(), owner.ID, false, store.ID, []StoreProductInput{
		{Barcode: "   "},
	})
	assert.ErrorIs(t, err, ErrUnknownBarcode)
}

func TestStoreProductService_AssignProducts_OwnerGuard(t *testing.T) {
	svc, testDB := setupStoreProductServiceTest(t)

	owner := createUser(t, testDB, "owner@example.com", model.RoleOwner)
	intruder := createUser(t, testDB, "intruder@example.com", model.RoleOwner)
	store := createStore(t, testDB, "Store", model.StoreStatusApproved, nil, nil)
	store.UserID = &owner.ID
	require.NoError(t, testDB.Save(store).Error)
	createProduct(t, testDB, "2001", "Coffee")

	input := []StoreProductInput{{Barcode: "2001"}}

	_, err := svc.AssignProducts(context.Background(), intruder.ID, false, store.ID, input)
	assert.ErrorIs(t, err, ErrStoreAccessDenied)

	// Admin bypasses ownership
	_, err = svc.AssignProducts(context.Background(), intruder.ID, true, store.ID, input)
	assert.NoError(t, err)
}

func TestStoreProductService_UpdateStoreProduct(t *testing.T) {
	svc, testDB := setupStoreProductServiceTest(t)

	owner := createUser(t, testDB, "owner@example.com", model.RoleOwner)
	store := createStore(t, testDB, "Store", model.StoreStatusApproved, nil, nil)
	store.UserID = &owner.ID
	require.NoError(t, testDB.Save(store).Error)
	createProduct(t, testDB, "2002", "Eggs")
	createStoreProduct(t, testDB, store.ID, "2002", floatPtr(9), intPtr(30), nil)

	row, err := svc.UpdateStoreProduct(context.Background(), owner.ID, false, store.ID, StoreProductInput{
		Barcode:      "2002",
		Availability: boolPtr(false),
	})
	require.NoError(t, err)
	require.NotNil(t, row.Availability)
	assert.False(t, *row.Availability)
	// Untouched fields survive a partial update
	assert.Equal(t, 9.0, *row.Price)
	assert.Equal(t, 30, *row.Stock)

	_, err = svc.UpdateStoreProduct(context.Background(), owner.ID, false, store.ID, StoreProductInput{
		Barcode: "missing",
	})
	assert.ErrorIs(t, err, ErrStoreProductNotFound)
}

func TestStoreProductService_RemoveStoreProduct(t *testing.T) {
	svc, testDB := setupStoreProductServiceTest(t)

	owner := createUser(t, testDB, "owner@example.com", model.RoleOwner)
	store := createStore(t, testDB, "Store", model.StoreStatusApproved, nil, nil)
	store.UserID = &owner.ID
	require.NoError(t, testDB.Save(store).Error)
	createProduct(t, testDB, "2003", "Bread")
	createStoreProduct(t, testDB, store.ID, "2003", nil, nil, nil)

	err := svc.RemoveStoreProduct(context.Background(), owner.ID, false, store.ID, "2003")
	require.NoError(t, err)

	rows, err := svc.ListStoreProducts(store.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = svc.RemoveStoreProduct(context.Background(), owner.ID, false, store.ID, "2003")
	assert.ErrorIs(t, err, ErrStoreProductNotFound)
}
