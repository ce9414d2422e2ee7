package router

import (
	"blogify/internal/handlers"
	"blogify/internal/middleware"
	"blogify/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes wires every route to its handler and the ordered list of
// auth/role gates that run before it.
func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	// Handlers
	authHandler := handlers.NewAuthHandler(db)
	userHandler := handlers.NewUserHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	postHandler := handlers.NewPostHandler(db)
	commentHandler := handlers.NewCommentHandler(db)

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)   // issue session token
		auth.POST("/logout", authHandler.Logout) // clear session cookie
	}

	users := r.Group("/users")
	{
		users.GET("", userHandler.List)    // list, paginated/filterable
		users.POST("", userHandler.Create) // register
		users.PATCH("", middleware.Authenticate(), userHandler.ChangePassword)
		users.GET("/:slug", userHandler.Detail)
		users.PATCH("/:slug", middleware.Authenticate(), userHandler.Update) // owner or admin
		users.DELETE("/:id", middleware.Authenticate(),
			middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", middleware.Authenticate(),
			middleware.RequireAnyRole(models.RolePublisher, models.RoleAdmin), categoryHandler.Create)
		categories.GET("/total-categories", categoryHandler.Totals)
		categories.GET("/:slug", categoryHandler.Detail)
		categories.PATCH("/:slug", middleware.Authenticate(),
			middleware.RequireRoles(models.RoleAdmin), categoryHandler.Update)
		categories.DELETE("/:id", middleware.Authenticate(),
			middleware.RequireRoles(models.RoleAdmin), categoryHandler.Delete)
	}

	posts := r.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.POST("", middleware.Authenticate(),
			middleware.RequireRoles(models.RolePublisher), postHandler.Create)
		posts.GET("/likes-views", postHandler.LikesViews)
		posts.GET("/:slug", postHandler.Detail)
		posts.PATCH("/:slug", middleware.Authenticate(),
			middleware.RequireRoles(models.RolePublisher), postHandler.Update) // owner checked inside
		posts.DELETE("/:id", middleware.Authenticate(), postHandler.Delete) // owner or admin
		posts.PATCH("/like/:id", middleware.Authenticate(), postHandler.Like)
		posts.PATCH("/unlike/:id", middleware.Authenticate(), postHandler.Unlike)
		posts.PATCH("/view/:id", postHandler.View)
	}

	comments := r.Group("/comments")
	{
		comments.GET("", middleware.Authenticate(),
			middleware.RequireRoles(models.RoleAdmin, models.RolePublisher), commentHandler.List)
		comments.GET("/getPostComments/:postId", commentHandler.ListByPost)
		comments.POST("/create", middleware.Authenticate(), commentHandler.Create)
		comments.PATCH("/likeComment/:commentId", middleware.Authenticate(), commentHandler.Like)
		comments.PATCH("/editComment/:commentId", middleware.Authenticate(), commentHandler.Edit)
		comments.DELETE("/deleteComment/:commentId", middleware.Authenticate(), commentHandler.Delete)
	}
}
