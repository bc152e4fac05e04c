package service

import (
	"context"
	"testing"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductServiceTest(t *testing.T) ProductService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewProductService(repository.NewProductRepository(testDB))
}

func TestProductService_CreateProduct(t *testing.T) {
	productService := setupProductServiceTest(t)
	ctx := context.Background()

	err := productService.CreateProduct(ctx, &model.Product{
		Barcode: "  4800016644931  ",
		Name:    "Lucky Me Pancit Canton",
	})
	require.NoError(t, err)

	// The barcode was trimmed before storage
	product, err := productService.GetProductByBarcode(ctx, "4800016644931")
	require.NoError(t, err)
	assert.Equal(t, "4800016644931", product.Barcode)

	err = productService.CreateProduct(ctx, &model.Product{
		Barcode: "4800016644931",
		Name:    "Duplicate",
	})
	assert.ErrorIs(t, err, ErrProductBarcodeExists)

	err = productService.CreateProduct(ctx, &model.Product{Barcode: "   ", Name: "Blank"})
	assert.ErrorIs(t, err, ErrInvalidBarcode)
}

func TestProductService_GetProductByBarcode_NotFound(t *testing.T) {
	productService := setupProductServiceTest(t)

	_, err := productService.GetProductByBarcode(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_HonorsRequestCancellation(t *testing.T) {
	productService := setupProductServiceTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := productService.GetProductByBarcode(ctx, "4800016644931")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductNotFound)
}
