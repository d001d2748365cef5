package router

import (
	"time"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/storage"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the shared services the handlers are built from.
type Deps struct {
	Cache         utils.PageCache
	Store         storage.ImageStore
	IndexCacheTTL time.Duration
	SiteURL       string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler(deps.Cache, deps.Store, deps.IndexCacheTTL)
	followHandler := handlers.NewFollowHandler(deps.Store)
	seoHandler := handlers.NewSEOHandler(deps.SiteURL)

	// Public Routes
	r.GET("/", postHandler.Index)                     // последние записи
	r.GET("/group/:slug/", postHandler.GroupPosts)    // записи сообщества
	r.GET("/profile/:username/", postHandler.Profile) // профайл автора
	r.GET("/posts/:post_id/", postHandler.PostDetail) // запись с комментариями
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", authHandler.ShowSignup)
		auth.POST("/signup/", authHandler.Signup)
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/", authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/posts/:post_id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:post_id/edit/", postHandler.Edit)
		authorized.POST("/posts/:post_id/comment/", postHandler.AddComment)

		authorized.GET("/follow/", followHandler.Index)
		authorized.GET("/profile/:username/follow/", followHandler.Follow)
		authorized.POST("/profile/:username/follow/", followHandler.Follow)
		authorized.GET("/profile/:username/unfollow/", followHandler.Unfollow)
		authorized.POST("/profile/:username/unfollow/", followHandler.Unfollow)
	}

	r.NoRoute(handlers.NotFound)
}
