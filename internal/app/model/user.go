package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // account role

const (
	RoleUser  UserRole = "user"  // shopper account
	RoleOwner UserRole = "owner" // store owner account
	RoleAdmin UserRole = "admin" // administrator account
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Address      string         `json:"address"`
	AvatarURL    string         `json:"avatar_url"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Stores []Store `gorm:"foreignKey:UserID" json:"stores,omitempty"` // stores owned by this account
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the account has administrator authority
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
