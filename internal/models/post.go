package models

import (
	"time"
)

type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"not null;uniqueIndex:idx_title_author" json:"title"`
	Slug       string     `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Cover      string     `json:"cover"` // Optional
	AuthorID   uint       `gorm:"not null;index;uniqueIndex:idx_title_author" json:"authorId"`
	Author     User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author"`
	Categories []Category `gorm:"many2many:post_categories;" json:"categories"`
	Likes      int        `gorm:"default:0" json:"likes"`
	Views      int        `gorm:"default:0" json:"views"`
	Popular    bool       `gorm:"default:false" json:"popular"` // never reverts once set
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// Filled at query time, not persisted
	CommentsCount int    `gorm:"-" json:"commentsCount"`
	ContentHTML   string `gorm:"-" json:"contentHtml,omitempty"`
	LikedBy       []uint `gorm:"-" json:"likedBy,omitempty"`
}

// PostLike records one user's like on one post. The composite unique index is
// what makes the like toggle idempotent per (post, user).
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user_like" json:"postId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user_like" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
