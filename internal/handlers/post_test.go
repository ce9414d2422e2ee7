package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"blogify/internal/models"
	"blogify/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")

	createTestPost(t, r, author, "My First Post", []uint{tech.ID})

	var post models.Post
	require.NoError(t, database.First(&post).Error)
	assert.Equal(t, "my-first-post-by-alice", post.Slug)
	assert.Equal(t, author.ID, post.AuthorID)

	// Denormalized counters on author and category
	var freshAuthor models.User
	require.NoError(t, database.First(&freshAuthor, author.ID).Error)
	assert.Equal(t, 1, freshAuthor.NoOfPosts)

	var freshTech models.Category
	require.NoError(t, database.First(&freshTech, tech.ID).Error)
	assert.Equal(t, 1, freshTech.NoOfPosts)
}

func TestCreatePost_DuplicateTitleAuthor(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")

	createTestPost(t, r, author, "My First Post", []uint{tech.ID})

	w := doRequest(t, r, "POST", "/posts", gin.H{
		"title":      "My First Post",
		"content":    "Different content, same title and author.",
		"categories": []uint{tech.ID},
	}, tokenFor(t, author))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The failed create must not touch any counter
	var freshAuthor models.User
	require.NoError(t, database.First(&freshAuthor, author.ID).Error)
	assert.Equal(t, 1, freshAuthor.NoOfPosts)

	var freshTech models.Category
	require.NoError(t, database.First(&freshTech, tech.ID).Error)
	assert.Equal(t, 1, freshTech.NoOfPosts)
}

func TestCreatePost_UnknownCategory(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})

	w := doRequest(t, r, "POST", "/posts", gin.H{
		"title":      "Orphan Post",
		"content":    "Content long enough to pass validation.",
		"categories": []uint{999},
	}, tokenFor(t, author))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikePost_ToggleRoundTrip(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	reader := createTestUser(t, database, "bob", models.Roles{models.RoleUser})
	tech := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Likeable", []uint{tech.ID})

	var post models.Post
	require.NoError(t, database.First(&post).Error)
	path := fmt.Sprintf("/posts/like/%d", post.ID)

	// First call likes
	w := doRequest(t, r, "PATCH", path, nil, tokenFor(t, reader))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 1, post.Likes)
	var likeCount int64
	database.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", post.ID, reader.ID).Count(&likeCount)
	assert.Equal(t, int64(1), likeCount)

	// Second call by the same user undoes it
	w = doRequest(t, r, "PATCH", path, nil, tokenFor(t, reader))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 0, post.Likes)
	database.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likeCount)
	assert.Equal(t, int64(0), likeCount)
}

func TestUnlikePost(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	reader := createTestUser(t, database, "bob", models.Roles{models.RoleUser})
	tech := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Likeable", []uint{tech.ID})

	var post models.Post
	require.NoError(t, database.First(&post).Error)

	// Unlike without a prior like is a no-op
	w := doRequest(t, r, "PATCH", fmt.Sprintf("/posts/unlike/%d", post.ID), nil, tokenFor(t, reader))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 0, post.Likes)

	// Like then unlike restores the pre-like state
	doRequest(t, r, "PATCH", fmt.Sprintf("/posts/like/%d", post.ID), nil, tokenFor(t, reader))
	w = doRequest(t, r, "PATCH", fmt.Sprintf("/posts/unlike/%d", post.ID), nil, tokenFor(t, reader))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 0, post.Likes)
	var likeCount int64
	database.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likeCount)
	assert.Equal(t, int64(0), likeCount)
}

func TestViewPost_PopularThreshold(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Soon Popular", []uint{tech.ID})

	var post models.Post
	require.NoError(t, database.First(&post).Error)
	path := fmt.Sprintf("/posts/view/%d", post.ID)

	for i := 0; i < 49; i++ {
		w := doRequest(t, r, "PATCH", path, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 49, post.Views)
	assert.False(t, post.Popular)

	// The 50th view crosses the threshold
	doRequest(t, r, "PATCH", path, nil, "")
	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 50, post.Views)
	assert.True(t, post.Popular)

	// And popularity never reverts
	doRequest(t, r, "PATCH", path, nil, "")
	require.NoError(t, database.First(&post, post.ID).Error)
	assert.Equal(t, 51, post.Views)
	assert.True(t, post.Popular)
}

func TestDeletePost_Cascade(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	reader := createTestUser(t, database, "bob", models.Roles{models.RoleUser})
	catA := createTestCategory(t, database, "travel")
	catB := createTestCategory(t, database, "food")
	createTestPost(t, r, author, "Doomed Post", []uint{catA.ID, catB.ID})

	var post models.Post
	require.NoError(t, database.First(&post).Error)

	// Two comments and a like that must go with the post
	for i := 0; i < 2; i++ {
		w := doRequest(t, r, "POST", "/comments/create", gin.H{
			"content": "Nice one!",
			"postId":  post.ID,
		}, tokenFor(t, reader))
		require.Equal(t, http.StatusOK, w.Code)
	}
	doRequest(t, r, "PATCH", fmt.Sprintf("/posts/like/%d", post.ID), nil, tokenFor(t, reader))

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/posts/%d", post.ID), nil, tokenFor(t, author))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	database.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
	database.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	database.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// Counters on the author and both categories return to zero
	var freshAuthor models.User
	require.NoError(t, database.First(&freshAuthor, author.ID).Error)
	assert.Equal(t, 0, freshAuthor.NoOfPosts)
	for _, id := range []uint{catA.ID, catB.ID} {
		var cat models.Category
		require.NoError(t, database.First(&cat, id).Error)
		assert.Equal(t, 0, cat.NoOfPosts)
	}
}

func TestDeletePost_OwnerOrAdminOnly(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	stranger := createTestUser(t, database, "bob", models.Roles{models.RoleUser})
	admin := createTestUser(t, database, "root", models.Roles{models.RoleUser, models.RoleAdmin})
	tech := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Protected", []uint{tech.ID})

	var post models.Post
	require.NoError(t, database.First(&post).Error)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/posts/%d", post.ID), nil, tokenFor(t, stranger))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/posts/%d", post.ID), nil, tokenFor(t, admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPosts_Pagination(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")
	for i := 0; i < 12; i++ {
		createTestPost(t, r, author, fmt.Sprintf("Post Number %d", i), []uint{tech.ID})
	}

	type listResponse struct {
		TotalPosts int64 `json:"totalPosts"`
		TotalPages int   `json:"totalPages"`
		NextPage   *int  `json:"nextPage"`
		PrevPage   *int  `json:"prevPage"`
	}

	w := doRequest(t, r, "GET", "/posts?limit=5&page=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var first listResponse
	decodeBody(t, w, &first)
	assert.Equal(t, int64(12), first.TotalPosts)
	assert.Equal(t, 3, first.TotalPages)
	assert.Nil(t, first.PrevPage)
	require.NotNil(t, first.NextPage)
	assert.Equal(t, 2, *first.NextPage)

	w = doRequest(t, r, "GET", "/posts?limit=5&page=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var last listResponse
	decodeBody(t, w, &last)
	assert.Nil(t, last.NextPage)
	require.NotNil(t, last.PrevPage)
	assert.Equal(t, 2, *last.PrevPage)
}

func TestListPosts_Filters(t *testing.T) {
	r, database := newTestRouter(t)
	alice := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	bob := createTestUser(t, database, "bob", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")
	travel := createTestCategory(t, database, "travel")

	createTestPost(t, r, alice, "Go Generics", []uint{tech.ID})
	createTestPost(t, r, bob, "Hiking Patagonia", []uint{travel.ID})

	type listResponse struct {
		Posts      []models.Post `json:"posts"`
		TotalPosts int64         `json:"totalPosts"`
	}

	w := doRequest(t, r, "GET", fmt.Sprintf("/posts?authorId=%d", alice.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var byAuthor listResponse
	decodeBody(t, w, &byAuthor)
	require.Equal(t, int64(1), byAuthor.TotalPosts)
	assert.Equal(t, "Go Generics", byAuthor.Posts[0].Title)

	w = doRequest(t, r, "GET", fmt.Sprintf("/posts?categoryId=%d", travel.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var byCategory listResponse
	decodeBody(t, w, &byCategory)
	require.Equal(t, int64(1), byCategory.TotalPosts)
	assert.Equal(t, "Hiking Patagonia", byCategory.Posts[0].Title)

	w = doRequest(t, r, "GET", "/posts?searchBy=generics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var bySearch listResponse
	decodeBody(t, w, &bySearch)
	assert.Equal(t, int64(1), bySearch.TotalPosts)
}

func TestPostDetail(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Detailed Post", []uint{tech.ID})

	w := doRequest(t, r, "GET", "/posts/"+utils.PostSlug("Detailed Post", "alice"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Post models.Post `json:"post"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "Detailed Post", body.Post.Title)
	assert.NotEmpty(t, body.Post.ContentHTML)
	assert.Equal(t, "alice", body.Post.Author.Username)

	w = doRequest(t, r, "GET", "/posts/no-such-slug", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePost_CategoryDiff(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	catA := createTestCategory(t, database, "travel")
	catB := createTestCategory(t, database, "food")
	catC := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Moving Targets", []uint{catA.ID, catB.ID})

	// {A, B} -> {B, C}: A loses one, B untouched, C gains one
	w := doRequest(t, r, "PATCH", "/posts/"+utils.PostSlug("Moving Targets", "alice"), gin.H{
		"categories": []uint{catB.ID, catC.ID},
	}, tokenFor(t, author))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	counts := map[uint]int{}
	for _, id := range []uint{catA.ID, catB.ID, catC.ID} {
		var cat models.Category
		require.NoError(t, database.First(&cat, id).Error)
		counts[id] = cat.NoOfPosts
	}
	assert.Equal(t, 0, counts[catA.ID])
	assert.Equal(t, 1, counts[catB.ID])
	assert.Equal(t, 1, counts[catC.ID])
}

func TestUpdatePost_TitleReslugs(t *testing.T) {
	r, database := newTestRouter(t)
	author := createTestUser(t, database, "alice", models.Roles{models.RoleUser, models.RolePublisher})
	tech := createTestCategory(t, database, "technology")
	createTestPost(t, r, author, "Old Title", []uint{tech.ID})

	w := doRequest(t, r, "PATCH", "/posts/"+utils.PostSlug("Old Title", "alice"), gin.H{
		"title": "New Title",
	}, tokenFor(t, author))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var post models.Post
	require.NoError(t, database.First(&post).Error)
	assert.Equal(t, "new-title-by-alice", post.Slug)
}
