package model

import (
	"time"
)

// StoreProduct links a store to a catalog product with store-specific
// price, stock and availability. One row exists per (store, barcode) pair.
type StoreProduct struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	StoreID        uint      `gorm:"not null;index:idx_store_product_barcode,unique" json:"store_id"`
	ProductBarcode string    `gorm:"not null;index:idx_store_product_barcode,unique" json:"product_barcode"`
	Price          *float64  `json:"price"`
	Stock          *int      `json:"stock"`
	Availability   *bool     `json:"availability"` // explicit flag; derived from stock when null
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Store   Store   `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Product Product `gorm:"foreignKey:ProductBarcode;references:Barcode" json:"-"`
}

func (StoreProduct) TableName() string {
	return "store_products"
}

// EffectiveAvailability resolves the availability shown to shoppers.
// The explicit flag wins when set, even if it contradicts stock;
// otherwise availability derives from stock > 0.
func (sp *StoreProduct) EffectiveAvailability() bool {
	if sp.Availability != nil {
		return *sp.Availability
	}
	return sp.Stock != nil && *sp.Stock > 0
}
