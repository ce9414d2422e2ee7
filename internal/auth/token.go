package auth

import (
	"errors"
	"os"
	"time"

	"blogify/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the HTTP-only cookie carrying the session token.
const TokenCookie = "token"

// TokenTTL is the fixed token lifetime.
const TokenTTL = 7 * 24 * time.Hour

// Claims is the payload signed into every session token.
type Claims struct {
	UserID   uint         `json:"id"`
	Username string       `json:"username"`
	Roles    models.Roles `json:"roles"`
	jwt.RegisteredClaims
}

// Secret returns the token signing secret from the environment.
func Secret() []byte {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	return []byte(secret)
}

// GenerateToken mints a signed session token for the given user.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(Secret())
}

// ParseToken verifies a session token and returns its claims. Any failure
// (bad signature, expired, malformed) is an error; verification fails closed.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return Secret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
