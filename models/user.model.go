package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Login
	Email    string `gorm:"uniqueIndex;not null;size:255" json:"email,omitempty"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	Name   string `gorm:"size:100;not null" json:"name"`
	Hostel string `gorm:"size:100" json:"hostel,omitempty"`
	Phone  string `gorm:"size:20" json:"phone,omitempty"`

	Role string `gorm:"default:'user';size:20;not null" json:"role,omitempty"` // user, admin

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
