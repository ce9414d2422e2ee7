package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Likes     int       `gorm:"default:0" json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
	LikedBy     []uint `gorm:"-" json:"likedBy,omitempty"`
}

// CommentLike mirrors PostLike for comments.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_user_like" json:"commentId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_user_like" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
