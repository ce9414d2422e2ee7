package handlers

import (
	"errors"
	"net/http"
	"strings"

	"blogify/internal/auth"
	"blogify/internal/middleware"
	"blogify/internal/models"
	"blogify/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultUserLimit = 5

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// userSortColumns maps the sortBy query values to ORDER BY clauses.
var userSortColumns = map[string]string{
	"name":       "username ASC",
	"name desc":  "username DESC",
	"date":       "updated_at ASC",
	"date desc":  "updated_at DESC",
	"most-posts": "no_of_posts DESC",
}

// List returns a page of users matching the optional search text, newest
// updated first unless a sort key is given.
func (h *UserHandler) List(c *gin.Context) {
	searchBy := c.Query("searchBy")
	pageQuery := utils.ParsePage(c, defaultUserLimit)

	order, ok := userSortColumns[c.Query("sortBy")]
	if !ok {
		order = "updated_at DESC"
	}

	query := h.db.Model(&models.User{})
	if searchBy != "" {
		query = query.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(searchBy)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		internalError(c, err)
		return
	}

	var users []models.User
	if err := query.Order(order).Limit(pageQuery.Limit).Offset(pageQuery.Offset()).Find(&users).Error; err != nil {
		internalError(c, err)
		return
	}

	for i := range users {
		users[i].Username = utils.TitleWords(users[i].Username)
	}

	info := utils.NewPageInfo(total, pageQuery)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Users fetched successfully!",
		"users":      users,
		"totalUsers": info.Total,
		"totalPages": info.TotalPages,
		"nextPage":   info.NextPage,
		"prevPage":   info.PrevPage,
		"page":       info.Page,
		"limit":      info.Limit,
	})
}

// Detail returns one user by slug.
func (h *UserHandler) Detail(c *gin.Context) {
	var user models.User
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No user found!")
			return
		}
		internalError(c, err)
		return
	}

	user.Username = utils.TitleWords(user.Username)
	c.JSON(http.StatusOK, gin.H{
		"message": "User fetched successfully!",
		"user":    user,
	})
}

type createUserInput struct {
	Profile  string       `json:"profile"`
	Username string       `json:"username" binding:"required,min=3"`
	Email    string       `json:"email" binding:"required,email"`
	Password string       `json:"password" binding:"required"`
	Roles    models.Roles `json:"roles"`
}

// Create registers a new user. Username and email are case-normalized and the
// slug is derived from the username.
func (h *UserHandler) Create(c *gin.Context) {
	var input createUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Username, email and password are required!")
		return
	}

	if err := auth.ValidatePassword(input.Password); err != nil {
		message(c, http.StatusBadRequest, err.Error())
		return
	}

	if !input.Roles.Valid() {
		message(c, http.StatusBadRequest, "Invalid role!")
		return
	}
	if len(input.Roles) == 0 {
		input.Roles = models.Roles{models.RoleUser}
	}

	username := strings.ToLower(input.Username)
	email := strings.ToLower(input.Email)
	userSlug := utils.MakeSlug(username)

	var count int64
	h.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "Username already taken!")
		return
	}
	h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "User with that email already exists!")
		return
	}
	h.db.Model(&models.User{}).Where("slug = ?", userSlug).Count(&count)
	if count > 0 {
		message(c, http.StatusBadRequest, "User with that slug already exists!")
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		internalError(c, err)
		return
	}

	profile := input.Profile
	if profile == "" {
		profile = models.DefaultProfile
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Profile:  profile,
		Roles:    input.Roles,
		Slug:     userSlug,
	}
	if err := h.db.Create(&user).Error; err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "User created successfully!")
}

type updateUserInput struct {
	Profile  *string       `json:"profile"`
	Username *string       `json:"username"`
	Email    *string       `json:"email"`
	Roles    *models.Roles `json:"roles"`
}

// Update modifies a user's profile. Only the owner or an Admin may update,
// and only an Admin may change roles. A username change re-derives the slug
// and re-checks its uniqueness.
func (h *UserHandler) Update(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var user models.User
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No user found!")
			return
		}
		internalError(c, err)
		return
	}

	if claims.UserID != user.ID && !middleware.IsAdmin(claims) {
		message(c, http.StatusForbidden, "You can only update your own profile!")
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body!")
		return
	}

	if input.Username != nil {
		username := strings.ToLower(*input.Username)
		if len(username) < 3 {
			message(c, http.StatusBadRequest, "Username must be at least 3 characters long!")
			return
		}

		var count int64
		h.db.Model(&models.User{}).Where("username = ? AND id != ?", username, user.ID).Count(&count)
		if count > 0 {
			message(c, http.StatusBadRequest, "Can't update. Username already exists!")
			return
		}

		userSlug := utils.MakeSlug(username)
		h.db.Model(&models.User{}).Where("slug = ? AND id != ?", userSlug, user.ID).Count(&count)
		if count > 0 {
			message(c, http.StatusBadRequest, "Can't update. User with that slug already exists!")
			return
		}

		user.Username = username
		user.Slug = userSlug
	}

	if input.Email != nil {
		email := strings.ToLower(*input.Email)
		var count int64
		h.db.Model(&models.User{}).Where("email = ? AND id != ?", email, user.ID).Count(&count)
		if count > 0 {
			message(c, http.StatusBadRequest, "Can't update. Email already exists!")
			return
		}
		user.Email = email
	}

	if input.Profile != nil {
		user.Profile = *input.Profile
	}

	if input.Roles != nil {
		if !middleware.IsAdmin(claims) {
			message(c, http.StatusForbidden, "Only an Admin can change roles!")
			return
		}
		if !input.Roles.Valid() || len(*input.Roles) == 0 {
			message(c, http.StatusBadRequest, "Invalid role!")
			return
		}
		user.Roles = *input.Roles
	}

	if err := h.db.Save(&user).Error; err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "Account updated successfully!")
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ChangePassword replaces the caller's password hash. The session cookie is
// cleared on success; with no server-side revocation list the client simply
// has to log in again.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var input changePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "All fields are required!")
		return
	}

	var user models.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No user found!")
			return
		}
		internalError(c, err)
		return
	}

	if !auth.CheckPasswordHash(input.CurrentPassword, user.Password) {
		message(c, http.StatusBadRequest, "Current password is incorrect!")
		return
	}

	if input.NewPassword != input.ConfirmPassword {
		message(c, http.StatusBadRequest, "Passwords do not match!")
		return
	}

	if err := auth.ValidatePassword(input.NewPassword); err != nil {
		message(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		internalError(c, err)
		return
	}

	if err := h.db.Model(&user).Update("password", hash).Error; err != nil {
		internalError(c, err)
		return
	}

	c.SetCookie(auth.TokenCookie, "", -1, "/", "", false, true)
	message(c, http.StatusOK, "Password changed successfully! Please log in again.")
}

// Delete removes a user. Rejected while any post references the user.
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message(c, http.StatusNotFound, "No user found!")
			return
		}
		internalError(c, err)
		return
	}

	var postCount int64
	if err := h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&postCount).Error; err != nil {
		internalError(c, err)
		return
	}
	if postCount > 0 {
		message(c, http.StatusBadRequest, "Can't delete User associated with Post")
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		internalError(c, err)
		return
	}

	message(c, http.StatusOK, "User deleted successfully!")
}
