package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rbautista/tindahan-backend/config"
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

const batchSize = 500

// Imports stores and products from an XLSX workbook. The workbook may
// carry a "Stores" sheet (name, address, latitude, longitude, status)
// and a "Products" sheet (barcode, name, description). Imported stores
// default to pending unless the status column says otherwise.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	storeRepo := repository.NewStoreRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX file:", err)
	}
	defer f.Close()

	stores, err := readStores(f)
	if err != nil {
		log.Fatal("Failed to read stores:", err)
	}
	products, err := readProducts(f)
	if err != nil {
		log.Fatal("Failed to read products:", err)
	}

	fmt.Printf("Stores to import: %d\n", len(stores))
	fmt.Printf("Products to import: %d\n", len(products))
	if len(stores) == 0 && len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := storeRepo.BulkCreate(stores, batchSize); err != nil {
		log.Fatal("Failed to bulk create stores:", err)
	}
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total stores imported: %d\n", len(stores))
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readStores(f *excelize.File) ([]model.Store, error) {
	rows, err := sheetRows(f, "Stores")
	if err != nil || rows == nil {
		return nil, err
	}

	var stores []model.Store
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		address := strings.TrimSpace(cell(row, 1))
		if name == "" {
			skipped++
			continue
		}

		// Duplicate rows (same name and address) keep the first occurrence
		key := name + "|" + address
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		store := model.Store{
			Name:    name,
			Address: address,
			Status:  model.StoreStatusPending,
		}

		// Coordinates are optional; a store without both is imported
		// but never surfaces in lookups until they are set
		lat, errLat := strconv.ParseFloat(cell(row, 2), 64)
		lng, errLng := strconv.ParseFloat(cell(row, 3), 64)
		if errLat == nil && errLng == nil {
			store.Latitude = &lat
			store.Longitude = &lng
		}

		switch model.StoreStatus(strings.ToLower(cell(row, 4))) {
		case model.StoreStatusApproved:
			store.Status = model.StoreStatusApproved
		case model.StoreStatusRejected:
			store.Status = model.StoreStatusRejected
		}

		stores = append(stores, store)
	}

	fmt.Printf("Stores sheet: %d valid, %d skipped\n", len(stores), skipped)
	return stores, nil
}

func readProducts(f *excelize.File) ([]model.Product, error) {
	rows, err := sheetRows(f, "Products")
	if err != nil || rows == nil {
		return nil, err
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			skipped++
			continue
		}

		barcode := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if barcode == "" || name == "" || seen[barcode] {
			skipped++
			continue
		}
		seen[barcode] = true

		products = append(products, model.Product{
			Barcode:     barcode,
			Name:        name,
			Description: cell(row, 2),
			ImageURL:    cell(row, 3),
		})
	}

	fmt.Printf("Products sheet: %d valid, %d skipped\n", len(products), skipped)
	return products, nil
}

// sheetRows returns nil rows without error when the sheet is absent
func sheetRows(f *excelize.File, name string) ([][]string, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
