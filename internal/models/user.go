package models

import (
	"time"
)

const (
	RoleUser      = "User"
	RolePublisher = "Publisher"
	RoleAdmin     = "Admin"
)

// DefaultProfile is the avatar assigned when a user registers without one.
const DefaultProfile = "https://www.gravatar.com/avatar/?d=mp"

// Roles is a set of role names persisted as a JSON column.
type Roles []string

func (r Roles) Has(role string) bool {
	for _, held := range r {
		if held == role {
			return true
		}
	}
	return false
}

// HasAll reports whether every required role is held.
func (r Roles) HasAll(required ...string) bool {
	for _, role := range required {
		if !r.Has(role) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one of the required roles is held.
func (r Roles) HasAny(required ...string) bool {
	for _, role := range required {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Valid reports whether every entry is a known role name.
func (r Roles) Valid() bool {
	for _, role := range r {
		if role != RoleUser && role != RolePublisher && role != RoleAdmin {
			return false
		}
	}
	return true
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"` // stored lowercase
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`    // stored lowercase
	Password  string    `gorm:"not null" json:"-"`                    // bcrypt hash
	Profile   string    `json:"profile"`
	Roles     Roles     `gorm:"serializer:json" json:"roles"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	NoOfPosts int       `gorm:"default:0" json:"noOfPosts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
