package model

import (
	"time"

	"gorm.io/gorm"
)

type StoreStatus string // store approval lifecycle state

const (
	StoreStatusPending  StoreStatus = "pending"  // awaiting admin review
	StoreStatusApproved StoreStatus = "approved" // visible to the lookup flow
	StoreStatusRejected StoreStatus = "rejected" // hidden, owner may resubmit
)

type Store struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id"` // owner account
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `gorm:"type:text" json:"address"`
	Latitude  *float64       `gorm:"type:decimal(10,8)" json:"latitude"`  // WGS84
	Longitude *float64       `gorm:"type:decimal(11,8)" json:"longitude"` // WGS84
	ImageURL  string         `json:"image_url"`
	Status    StoreStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StoreProducts []StoreProduct `gorm:"foreignKey:StoreID" json:"store_products,omitempty"`
}

func (Store) TableName() string {
	return "stores"
}

// IsApproved reports whether the store is visible to end-user lookup
func (s *Store) IsApproved() bool {
	return s.Status == StoreStatusApproved
}

// HasCoordinates reports whether the store carries a usable geographic position.
// Stores without coordinates are excluded from ranking entirely.
func (s *Store) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}
