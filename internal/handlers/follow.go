package handlers

import (
	"net/http"
	"yatube/internal/db"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/services"
	"yatube/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedURL is the followed-authors feed every follow action returns to.
const FeedURL = "/follow/"

type FollowHandler struct {
	store storage.ImageStore
}

func NewFollowHandler(store storage.ImageStore) *FollowHandler {
	return &FollowHandler{store: store}
}

// Index lists posts by the authors the current user follows.
func (h *FollowHandler) Index(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var posts []models.Post
	page, err := pagination.Query(c.Request.Context(), services.FeedPosts(db.DB, user.ID), c.Query("page"), &posts, services.PostPreloads...)
	if err != nil {
		handleError(c, err)
		return
	}
	services.FillImageURLs(h.store, posts)

	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Title": "Избранные авторы",
		"Posts": posts,
		"Page":  page,
	})
}

func (h *FollowHandler) Follow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	author, err := services.GetUserByUsername(c.Request.Context(), db.DB, c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}

	created, err := services.Follow(c.Request.Context(), db.DB, user, author)
	if err != nil {
		handleError(c, err)
		return
	}
	if created {
		zap.L().Info("follow created", zap.Uint("user_id", user.ID), zap.Uint("author_id", author.ID))
	}
	c.Redirect(http.StatusFound, FeedURL)
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	author, err := services.GetUserByUsername(c.Request.Context(), db.DB, c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}

	if _, err := services.Unfollow(c.Request.Context(), db.DB, user, author); err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, FeedURL)
}
