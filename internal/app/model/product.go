package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is a globally shared catalog record keyed by its barcode.
// Products are created by store staff and never mutated once scanned
// against; store-specific price and stock live in StoreProduct.
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Barcode     string         `gorm:"uniqueIndex;not null" json:"barcode"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `json:"image_url"`
	CreatedBy   *uint          `gorm:"index" json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	StoreProducts []StoreProduct `gorm:"foreignKey:ProductBarcode;references:Barcode" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
