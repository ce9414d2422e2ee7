package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"blogify/internal/models"
	"blogify/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultCategoryLimit = 10

const categoryTotalsCacheKey = "category:totals"

type CategoryHandler struct {
	db *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

var categorySortColumns = map[string]string{
	"name":       "name ASC",
	"name desc":  "name DESC",
	"date":       "updated_at ASC",
	"date desc":  "updated_at DESC",
	"most-posts": "no_of_posts DESC",
}

// List returns a page of categories matching the optional search text.
func (h *CategoryHandler) List(c *gin.Context) {
	searchBy := c.Query("searchBy")
	pageQuery := utils.ParsePage(c, defaultCategoryLimit)

	order, ok := categorySortColumns[c.Query("sortBy")]
	if !ok {
		order = "updated_at DESC"
	}

	query := h.db.Model(&models.Category{})
	if searchBy != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(searchBy)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		internalError(c, err)
		return
	}

	var categories []models.Category
	if err := query.Order(order).Limit(pageQuery.Limit).Offset(pageQuery.Offset()).Find(&categories).Error; err != nil {
		internalError(c, err)
		return
	}

	for i := range categories {
		categories[i].Name = utils.TitleWords(categories[i].Name)
	}

	info := utils.NewPageInfo(total, pageQuery)
	c.JSON(http.StatusOK, gin.H{
		"message":         "Categories fetched successfully!",
		"categories":      categories,
		"totalCategories": info.Total,
		"totalPages":      info.TotalPages,
		"nextPage":        info.NextPage,
		"prevPage":        info.PrevPage,
		"page":            info.Page,
		"limit":           info.Limit,
	})
}

// Detail returns one category by slug.
func (h *CategoryHandler) Detail(c *gin.Context) {
	var category models.Category
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Category not found!")
			return
		}
		internalError(c, err)
		return
	}

	category.Name = utils.TitleWords(category.Name)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Category fetched successfully!",
		"category": category,
	})
}

type categoryInput struct {
	Name string `json:"name" binding:"required,min=2"`
}

// Create adds a category. Name is case-normalized; the slug is derived from it.
func (h *CategoryHandler) Create(c *gin.Context) {
	var input categoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Category name must be at least 2 characters long!")
		return
	}

	name := strings.ToLower(input.Name)
	categorySlug := utils.MakeSlug(name)

	var count int64
	h.db.Model(&models.Category{}).Where("name = ? OR slug = ?", name, categorySlug).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "Category already exists!")
		return
	}

	category := models.Category{Name: name, Slug: categorySlug}
	if err := h.db.Create(&category).Error; err != nil {
		internalError(c, err)
		return
	}

	utils.GetCache().Delete(categoryTotalsCacheKey)
	message(c, http.StatusOK, "Category created succssfully!")
}

// Update renames a category, re-deriving and re-checking the slug.
func (h *CategoryHandler) Update(c *gin.Context) {
	var category models.Category
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "Category not found!")
			return
		}
		internalError(c, err)
		return
	}

	var input categoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Category name must be at least 2 characters long!")
		return
	}

	name := strings.ToLower(input.Name)
	categorySlug := utils.MakeSlug(name)

	var count int64
	h.db.Model(&models.Category{}).Where("(name = ? OR slug = ?) AND id != ?", name, categorySlug, category.ID).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "Category already exists!")
		return
	}

	category.Name = name
	category.Slug = categorySlug
	if err := h.db.Save(&category).Error; err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Category updated successfully!")
}

// Delete removes a category. Rejected while any post references it.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No category found!")
			return
		}
		internalError(c, err)
		return
	}

	var postCount int64
	if err := h.db.Table("post_categories").Where("category_id = ?", category.ID).Count(&postCount).Error; err != nil {
		internalError(c, err)
		return
	}
	if postCount > 0 {
		message(c, http.StatusBadRequest, "Can't delete Category with associated Posts")
		return
	}

	if err := h.db.Delete(&category).Error; err != nil {
		internalError(c, err)
		return
	}

	utils.GetCache().Delete(categoryTotalsCacheKey)
	message(c, http.StatusOK, "Category deleted successfully!")
}

type categoryTotals struct {
	Total     int64 `json:"total"`
	LastWeek  int64 `json:"lastWeek"`
	LastMonth int64 `json:"lastMonth"`
}

// Totals returns how many categories exist and how many were created in the
// trailing week and month. Cached for one minute.
func (h *CategoryHandler) Totals(c *gin.Context) {
	if cached := utils.GetCache().Get(categoryTotalsCacheKey); cached != nil {
		if totals, ok := cached.(categoryTotals); ok {
			c.JSON(http.StatusOK, gin.H{"message": "Category totals fetched successfully!", "totals": totals})
			return
		}
	}

	var totals categoryTotals
	now := time.Now()
	if err := h.db.Model(&models.Category{}).Count(&totals.Total).Error; err != nil {
		internalError(c, err)
		return
	}
	if err := h.db.Model(&models.Category{}).Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&totals.LastWeek).Error; err != nil {
		internalError(c, err)
		return
	}
	if err := h.db.Model(&models.Category{}).Where("created_at >= ?", now.AddDate(0, -1, 0)).Count(&totals.LastMonth).Error; err != nil {
		internalError(c, err)
		return
	}

	utils.GetCache().Set(categoryTotalsCacheKey, totals, time.Minute)
	c.JSON(http.StatusOK, gin.H{"message": "Category totals fetched successfully!", "totals": totals})
}
