package handlers

import (
	"errors"
	"net/http"

	"blogify/internal/middleware"
	"blogify/internal/models"
	"blogify/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultCommentLimit = 20

type CommentHandler struct {
	db *gorm.DB
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

// List returns a page of all comments, newest first.
func (h *CommentHandler) List(c *gin.Context) {
	pageQuery := utils.ParsePage(c, defaultCommentLimit)

	var total int64
	if err := h.db.Model(&models.Comment{}).Count(&total).Error; err != nil {
		internalError(c, err)
		return
	}

	var comments []models.Comment
	err := h.db.Order("created_at DESC").
		Limit(pageQuery.Limit).
		Offset(pageQuery.Offset()).
		Find(&comments).Error
	if err != nil {
		internalError(c, err)
		return
	}

	info := utils.NewPageInfo(total, pageQuery)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Comments fetched successfully!",
		"comments":      comments,
		"totalComments": info.Total,
		"totalPages":    info.TotalPages,
		"nextPage":      info.NextPage,
		"prevPage":      info.PrevPage,
		"page":          info.Page,
		"limit":         info.Limit,
	})
}

// ListByPost returns a post's comments, newest first, rendered for display.
func (h *CommentHandler) ListByPost(c *gin.Context) {
	limit := utils.StringToInt(c.Query("limit"))
	if limit < 1 {
		limit = defaultCommentLimit
	}

	var comments []models.Comment
	err := h.db.Where("post_id = ?", c.Param("postId")).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		internalError(c, err)
		return
	}

	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Comments fetched successfully!",
		"comments": comments,
	})
}

type createCommentInput struct {
	Content string `json:"content" binding:"required"`
	PostID  uint   `json:"postId" binding:"required"`
}

// Create publishes a comment by the caller on an existing post.
func (h *CommentHandler) Create(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var input createCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Content and postId are required!")
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", input.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Post not found!")
			return
		}
		internalError(c, err)
		return
	}

	comment := models.Comment{
		Content: input.Content,
		UserID:  claims.UserID,
		PostID:  post.ID,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Comment published successfully!")
}

// Like toggles the caller's like on a comment, same semantics as post likes.
func (h *CommentHandler) Like(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", c.Param("commentId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Comment not found!")
			return
		}
		internalError(c, err)
		return
	}

	liked := false
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", comment.ID, claims.UserID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			if err := tx.Create(&models.CommentLike{CommentID: comment.ID, UserID: claims.UserID}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
				UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error
		default:
			return err
		}
	})
	if err != nil {
		internalError(c, err)
		return
	}

	if liked {
		message(c, http.StatusOK, "Comment liked successfully!")
		return
	}
	message(c, http.StatusOK, "Comment unliked successfully!")
}

type editCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// Edit lets a comment's author change its content. Owner only.
func (h *CommentHandler) Edit(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", c.Param("commentId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Comment not found!")
			return
		}
		internalError(c, err)
		return
	}

	if comment.UserID != claims.UserID {
		message(c, http.StatusForbidden, "You are not allowed to edit this comment!")
		return
	}

	var input editCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Content is required!")
		return
	}

	if err := h.db.Model(&comment).Update("content", input.Content).Error; err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Comment edited successfully!")
}

// Delete removes a comment and its like rows. Owner or Admin only.
func (h *CommentHandler) Delete(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", c.Param("commentId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Comment not found!")
			return
		}
		internalError(c, err)
		return
	}

	if comment.UserID != claims.UserID && !middleware.IsAdmin(claims) {
		message(c, http.StatusForbidden, "You are not allowed to delete this comment")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Comment deleted successfully!")
}
