package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"blogify/internal/middleware"
	"blogify/internal/models"
	"blogify/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultPostLimit = 10

const likesViewsCacheKey = "post:likes-views"

// defaultPopularThreshold is the view count at which a post becomes popular.
const defaultPopularThreshold = 50

type PostHandler struct {
	db *gorm.DB
}

func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{db: db}
}

func popularThreshold() int {
	if n := utils.StringToInt(os.Getenv("POPULAR_THRESHOLD")); n > 0 {
		return n
	}
	return defaultPopularThreshold
}

var postSortColumns = map[string]string{
	"title":      "title ASC",
	"title desc": "title DESC",
	"oldest":     "updated_at ASC",
	"views":      "views DESC",
	"likes":      "likes DESC",
}

// fillCommentsCounts batch-fills the comment count for a page of posts.
func (h *PostHandler) fillCommentsCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	h.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentsCount = countMap[posts[i].ID]
	}
}

// preloadAuthor limits the author payload to the public fields.
func preloadAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "profile")
}

// List returns a page of posts with optional search, sort and filters
// (popular, author, category).
func (h *PostHandler) List(c *gin.Context) {
	searchBy := c.Query("searchBy")
	pageQuery := utils.ParsePage(c, defaultPostLimit)

	order, ok := postSortColumns[c.Query("sortBy")]
	if !ok {
		order = "created_at DESC"
	}

	query := h.db.Model(&models.Post{})
	if searchBy != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(searchBy)+"%")
	}
	if c.Query("filterBy") == "popular" {
		query = query.Where("popular = ?", true)
	}
	if authorID := utils.StringToInt(c.Query("authorId")); authorID > 0 {
		query = query.Where("author_id = ?", authorID)
	}
	if categoryID := utils.StringToInt(c.Query("categoryId")); categoryID > 0 {
		query = query.Where("id IN (SELECT post_id FROM post_categories WHERE category_id = ?)", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		internalError(c, err)
		return
	}

	var posts []models.Post
	err := query.Preload("Author", preloadAuthor).Preload("Categories").
		Order(order).
		Limit(pageQuery.Limit).
		Offset(pageQuery.Offset()).
		Find(&posts).Error
	if err != nil {
		internalError(c, err)
		return
	}

	h.fillCommentsCounts(posts)

	info := utils.NewPageInfo(total, pageQuery)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Posts fetched successfully!",
		"posts":      posts,
		"totalPosts": info.Total,
		"totalPages": info.TotalPages,
		"nextPage":   info.NextPage,
		"prevPage":   info.PrevPage,
		"page":       info.Page,
		"limit":      info.Limit,
	})
}

// Detail returns one post by slug, with its comment count, the rendered
// content and the ids of the users who liked it.
func (h *PostHandler) Detail(c *gin.Context) {
	var post models.Post
	err := h.db.Preload("Author", preloadAuthor).Preload("Categories").
		Where("slug = ?", c.Param("slug")).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No post found!")
			return
		}
		internalError(c, err)
		return
	}

	var commentsCount int64
	h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentsCount)
	post.CommentsCount = int(commentsCount)
	post.ContentHTML = utils.RenderMarkdown(post.Content)
	h.db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Pluck("user_id", &post.LikedBy)

	c.JSON(http.StatusOK, gin.H{
		"message": "Post fetched successfully!",
		"post":    post,
	})
}

type createPostInput struct {
	Title      string `json:"title" binding:"required,min=3"`
	Content    string `json:"content" binding:"required,min=10"`
	Cover      string `json:"cover"`
	Categories []uint `json:"categories" binding:"required,min=1"`
}

// Create publishes a post by the caller. The post insert and the noOfPosts
// increments on the author and every category run in one transaction.
func (h *PostHandler) Create(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Title, content and at least one category are required!")
		return
	}

	var categories []models.Category
	if err := h.db.Where("id IN ?", input.Categories).Find(&categories).Error; err != nil {
		internalError(c, err)
		return
	}
	if len(categories) != len(uniqueIDs(input.Categories)) {
		message(c, http.StatusNotFound, "Category not found!")
		return
	}

	var count int64
	h.db.Model(&models.Post{}).Where("title = ? AND author_id = ?", input.Title, claims.UserID).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "Post with same Author already exists!")
		return
	}

	postSlug := utils.PostSlug(input.Title, claims.Username)
	h.db.Model(&models.Post{}).Where("slug = ?", postSlug).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "Post with that slug already exists!")
		return
	}

	post := models.Post{
		Title:      input.Title,
		Slug:       postSlug,
		Content:    input.Content,
		Cover:      input.Cover,
		AuthorID:   claims.UserID,
		Categories: categories,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories.*").Create(&post).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", claims.UserID).
			UpdateColumn("no_of_posts", gorm.Expr("no_of_posts + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).Where("id IN ?", input.Categories).
			UpdateColumn("no_of_posts", gorm.Expr("no_of_posts + ?", 1)).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post created successfully!",
		"post":    post,
	})
}

type updatePostInput struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Cover      *string `json:"cover"`
	Categories *[]uint `json:"categories"`
}

// Update edits a post. Authorship is immutable; a title change re-derives the
// slug; a category-set change adjusts noOfPosts only for the categories added
// or removed.
func (h *PostHandler) Update(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var post models.Post
	if err := h.db.Preload("Categories").Where("slug = ?", c.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No post found!")
			return
		}
		internalError(c, err)
		return
	}

	if post.AuthorID != claims.UserID {
		message(c, http.StatusForbidden, "You are not allowed to update this post!")
		return
	}

	var input updatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body!")
		return
	}

	if input.Title != nil {
		title := *input.Title
		if len(title) < 3 {
			message(c, http.StatusBadRequest, "Title must be at least 3 characters long!")
			return
		}

		var count int64
		h.db.Model(&models.Post{}).Where("title = ? AND author_id = ? AND id != ?", title, post.AuthorID, post.ID).Count(&count)
		if count > 0 {
			message(c, http.StatusBadRequest, "Could not update! Post with same author already exists!")
			return
		}

		postSlug := utils.PostSlug(title, claims.Username)
		h.db.Model(&models.Post{}).Where("slug = ? AND id != ?", postSlug, post.ID).Count(&count)
		if count > 0 {
			message(c, http.StatusBadRequest, "Post with that slug already exists!")
			return
		}

		post.Title = title
		post.Slug = postSlug
	}

	if input.Content != nil {
		if len(*input.Content) < 10 {
			message(c, http.StatusBadRequest, "Content must be at least 10 characters long!")
			return
		}
		post.Content = *input.Content
	}

	if input.Cover != nil {
		post.Cover = *input.Cover
	}

	var newCategories []models.Category
	var added, removed []uint
	if input.Categories != nil {
		ids := uniqueIDs(*input.Categories)
		if len(ids) == 0 {
			message(c, http.StatusBadRequest, "At least one category is required!")
			return
		}
		if err := h.db.Where("id IN ?", ids).Find(&newCategories).Error; err != nil {
			internalError(c, err)
			return
		}
		if len(newCategories) != len(ids) {
			message(c, http.StatusNotFound, "Category not found!")
			return
		}

		oldSet := make(map[uint]bool, len(post.Categories))
		for _, cat := range post.Categories {
			oldSet[cat.ID] = true
		}
		newSet := make(map[uint]bool, len(ids))
		for _, id := range ids {
			newSet[id] = true
			if !oldSet[id] {
				added = append(added, id)
			}
		}
		for _, cat := range post.Categories {
			if !newSet[cat.ID] {
				removed = append(removed, cat.ID)
			}
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories").Save(&post).Error; err != nil {
			return err
		}
		if input.Categories != nil {
			if err := tx.Model(&post).Association("Categories").Replace(newCategories); err != nil {
				return err
			}
			if len(added) > 0 {
				if err := tx.Model(&models.Category{}).Where("id IN ?", added).
					UpdateColumn("no_of_posts", gorm.Expr("no_of_posts + ?", 1)).Error; err != nil {
					return err
				}
			}
			if len(removed) > 0 {
				if err := tx.Model(&models.Category{}).Where("id IN ?", removed).
					UpdateColumn("no_of_posts", gorm.Expr("no_of_posts - ?", 1)).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Post updated successfully!")
}

// Delete removes a post. Owner or Admin only. The comment cascade, the like
// rows, the category references and the counter decrements all run in the
// same transaction as the post delete.
func (h *PostHandler) Delete(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	id := c.Param("id")

	var post models.Post
	if err := h.db.Preload("Categories").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Post not found!")
			return
		}
		internalError(c, err)
		return
	}

	if post.AuthorID != claims.UserID && !middleware.IsAdmin(claims) {
		message(c, http.StatusForbidden, "You are not allowed to delete this post!")
		return
	}

	categoryIDs := make([]uint, len(post.Categories))
	for i, cat := range post.Categories {
		categoryIDs[i] = cat.ID
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", post.ID),
		).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", post.AuthorID).
			UpdateColumn("no_of_posts", gorm.Expr("no_of_posts - ?", 1)).Error; err != nil {
			return err
		}
		if len(categoryIDs) > 0 {
			if err := tx.Model(&models.Category{}).Where("id IN ?", categoryIDs).
				UpdateColumn("no_of_posts", gorm.Expr("no_of_posts - ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Post deleted successfully!")
}

// Like toggles the caller's like on a post: first call likes, second call
// unlikes. Membership and counter change in the same transaction.
func (h *PostHandler) Like(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	id := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Post not found!")
			return
		}
		internalError(c, err)
		return
	}

	liked := false
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, claims.UserID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			if err := tx.Create(&models.PostLike{PostID: post.ID, UserID: claims.UserID}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).Where("id = ?", post.ID).
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
		message(c, http.StatusOK, "You've appreciated this post!")
		return
	}
	message(c, http.StatusOK, "Like removed! Your interaction matters!")
}

// Unlike removes the caller's like if present; otherwise it is a no-op.
func (h *PostHandler) Unlike(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	id := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Post not found!")
			return
		}
		internalError(c, err)
		return
	}

	removed := false
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, claims.UserID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		removed = true
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}

	if removed {
		message(c, http.StatusOK, "Like removed! Your interaction matters!")
		return
	}
	message(c, http.StatusOK, "You haven't liked this post yet!")
}

// View increments the view counter. Once the counter reaches the popularity
// threshold the post is marked popular and stays that way.
func (h *PostHandler) View(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Post not found!")
			return
		}
		internalError(c, err)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND views >= ? AND popular = ?", post.ID, popularThreshold(), false).
			UpdateColumn("popular", true).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Post viewed successfully")
}

type likesViewsTotals struct {
	TotalLikes int64 `json:"totalLikes"`
	TotalViews int64 `json:"totalViews"`
}

// LikesViews returns the site-wide like and view totals. Cached for one minute.
func (h *PostHandler) LikesViews(c *gin.Context) {
	if cached := utils.GetCache().Get(likesViewsCacheKey); cached != nil {
		if totals, ok := cached.(likesViewsTotals); ok {
			c.JSON(http.StatusOK, gin.H{"message": "Totals fetched successfully!", "totals": totals})
			return
		}
	}

	var totals likesViewsTotals
	row := h.db.Model(&models.Post{}).
		Select("COALESCE(SUM(likes), 0) AS total_likes, COALESCE(SUM(views), 0) AS total_views").
		Row()
	if err := row.Scan(&totals.TotalLikes, &totals.TotalViews); err != nil {
		internalError(c, err)
		return
	}

	utils.GetCache().Set(likesViewsCacheKey, totals, time.Minute)
	c.JSON(http.StatusOK, gin.H{"message": "Totals fetched successfully!", "totals": totals})
}

// uniqueIDs deduplicates an id list while keeping order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
