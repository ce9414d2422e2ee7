package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogify/internal/auth"
	"blogify/internal/db"
	"blogify/internal/models"
	"blogify/internal/router"
	"blogify/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestRouter wires the real route table against a per-test in-memory
// database, so tests exercise the same gates and handlers as production.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	r := gin.New()
	router.RegisterRoutes(r, database)
	return r, database
}

// createTestUser inserts a user directly; the password is always "Password1".
func createTestUser(t *testing.T, database *gorm.DB, username string, roles models.Roles) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("Password1")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Profile:  models.DefaultProfile,
		Roles:    roles,
		Slug:     utils.MakeSlug(username),
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, database *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: utils.MakeSlug(name)}
	require.NoError(t, database.Create(category).Error)
	return category
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// doRequest runs one request through the router. A non-empty token is sent
// the way browsers send it, as the session cookie.
func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: token})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// createTestPost publishes a post through the API so the slug derivation and
// counter increments run exactly as in production.
func createTestPost(t *testing.T, r *gin.Engine, author *models.User, title string, categoryIDs []uint) {
	t.Helper()
	w := doRequest(t, r, "POST", "/posts", gin.H{
		"title":      title,
		"content":    "Some content long enough to pass validation.",
		"categories": categoryIDs,
	}, tokenFor(t, author))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
