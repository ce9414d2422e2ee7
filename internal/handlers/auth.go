package handlers

import (
	"net/http"
	"strings"

	"blogify/internal/auth"
	"blogify/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies the credentials, mints a session token and sets it as an
// HTTP-only cookie. The token is also returned in the body for clients that
// prefer the bearer header.
func (h *AuthHandler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		message(c, http.StatusBadRequest, "All fields are required!")
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		// Same answer for unknown email and bad password
		message(c, http.StatusBadRequest, "Invalid Credentials!")
		return
	}

	if !auth.CheckPasswordHash(input.Password, user.Password) {
		message(c, http.StatusBadRequest, "Invalid Credentials!")
		return
	}

	accessToken, err := auth.GenerateToken(&user)
	if err != nil {
		internalError(c, err)
		return
	}

	c.SetCookie(auth.TokenCookie, accessToken, int(auth.TokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login Sucessfull!",
		"accessToken": accessToken,
	})
}

// Logout clears the session cookie. Tokens are stateless, so nothing is
// revoked server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(auth.TokenCookie, "", -1, "/", "", false, true)
	message(c, http.StatusOK, "Logout Successfull!")
}
