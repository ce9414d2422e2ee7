package models

import (
	"time"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"` // stored lowercase
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	NoOfPosts int       `gorm:"default:0" json:"noOfPosts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
