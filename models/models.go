package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleRestaurantOwner = "RESTAURANT_OWNER"
	RoleAdmin           = "ADMIN"
)

// User represents a restaurant owner or an administrator
type User struct {
	gorm.Model
	Username    *string    `gorm:"uniqueIndex" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `json:"-"`
	FullName    string     `json:"full_name"`
	Role        string     `gorm:"not null;default:'RESTAURANT_OWNER'" json:"role"`
	IsBlocked   bool       `json:"is_blocked"`
	GoogleID    *string    `gorm:"uniqueIndex" json:"-"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
