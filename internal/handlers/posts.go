package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IndexCacheTTL is how long a rendered index page is reused.
const IndexCacheTTL = 20 * time.Second

const detailTitleChars = 30

type PostHandler struct {
	cache    utils.PageCache
	store    storage.ImageStore
	indexTTL time.Duration
}

// NewPostHandler wires the post pages. A nil cache disables index caching;
// a non-positive ttl falls back to IndexCacheTTL.
func NewPostHandler(cache utils.PageCache, store storage.ImageStore, indexTTL time.Duration) *PostHandler {
	if indexTTL <= 0 {
		indexTTL = IndexCacheTTL
	}
	return &PostHandler{cache: cache, store: store, indexTTL: indexTTL}
}

// indexPage is the cached part of the index: everything except the viewer.
type indexPage struct {
	Posts []models.Post   `json:"posts"`
	Page  pagination.Page `json:"page"`
}

func indexCacheKey(page int) string {
	return fmt.Sprintf("index:page:%d", page)
}

func (h *PostHandler) Index(c *gin.Context) {
	raw := c.Query("page")
	cacheKey := indexCacheKey(pagination.ParseNumber(raw))

	var data indexPage
	if h.cache != nil {
		found, err := h.cache.Get(c.Request.Context(), cacheKey, &data)
		if err != nil {
			zap.L().Warn("index cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		if found {
			middleware.PageCacheLookups.WithLabelValues("index", "hit").Inc()
			h.renderIndex(c, data)
			return
		}
		middleware.PageCacheLookups.WithLabelValues("index", "miss").Inc()
	}

	page, err := pagination.Query(c.Request.Context(), services.AllPosts(db.DB), raw, &data.Posts, services.PostPreloads...)
	if err != nil {
		handleError(c, err)
		return
	}
	data.Page = page
	services.FillImageURLs(h.store, data.Posts)

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), cacheKey, data, h.indexTTL); err != nil {
			zap.L().Warn("index cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	h.renderIndex(c, data)
}

func (h *PostHandler) renderIndex(c *gin.Context, data indexPage) {
	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Title": "Последние обновления на сайте",
		"Posts": data.Posts,
		"Page":  data.Page,
		"Index": true,
	})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := services.GetGroupBySlug(ctx, db.DB, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}

	var posts []models.Post
	page, err := pagination.Query(ctx, services.GroupPosts(db.DB, group.ID), c.Query("page"), &posts, services.PostPreloads...)
	if err != nil {
		handleError(c, err)
		return
	}
	services.FillImageURLs(h.store, posts)

	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Title": "Записи сообщества " + group.Title,
		"Group": group,
		"Posts": posts,
		"Page":  page,
	})
}

func (h *PostHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := services.GetUserByUsername(ctx, db.DB, c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}

	var posts []models.Post
	page, err := pagination.Query(ctx, services.AuthorPosts(db.DB, author.ID), c.Query("page"), &posts, services.PostPreloads...)
	if err != nil {
		handleError(c, err)
		return
	}
	services.FillImageURLs(h.store, posts)

	following, err := services.IsFollowing(ctx, db.DB, middleware.CurrentUser(c), author)
	if err != nil {
		handleError(c, err)
		return
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Title":            "Профайл пользователя " + author.FullName(),
		"Author":           author,
		"AuthorPostsCount": page.Count,
		"Following":        following,
		"Posts":            posts,
		"Page":             page,
	})
}

func (h *PostHandler) PostDetail(c *gin.Context) {
	ctx := c.Request.Context()
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	count, err := services.CountAuthorPosts(ctx, db.DB, post.AuthorID)
	if err != nil {
		handleError(c, err)
		return
	}
	comments, err := services.Comments(ctx, db.DB, post.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	services.FillImageURL(h.store, post)

	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Title":            "Пост " + utils.TruncateChars(post.Text, detailTitleChars),
		"Post":             post,
		"AuthorPostsCount": count,
		"Comments":         comments,
		"Form":             forms.NewCommentForm(),
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, forms.NewPostForm(), nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	form := forms.BindPostForm(c, db.DB)
	if !form.IsValid() {
		h.renderPostForm(c, http.StatusOK, form, nil)
		return
	}

	post, err := services.CreatePost(c.Request.Context(), db.DB, h.store, user, form)
	if err != nil {
		handleError(c, err)
		return
	}
	zap.L().Info("post created", zap.Uint("post_id", post.ID), zap.Uint("author_id", user.ID))

	c.Redirect(http.StatusFound, ProfileURL(user.Username))
}

// ShowEdit and Edit send anyone but the author back to the post without
// touching it.
func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if !isAuthor(c, post) {
		c.Redirect(http.StatusFound, PostURL(post.ID))
		return
	}
	services.FillImageURL(h.store, post)
	h.renderPostForm(c, http.StatusOK, forms.PostFormFor(post), post)
}

func (h *PostHandler) Edit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if !isAuthor(c, post) {
		c.Redirect(http.StatusFound, PostURL(post.ID))
		return
	}

	form := forms.BindPostForm(c, db.DB)
	if !form.IsValid() {
		services.FillImageURL(h.store, post)
		h.renderPostForm(c, http.StatusOK, form, post)
		return
	}

	err := services.UpdatePost(c.Request.Context(), db.DB, h.store, post, middleware.CurrentUser(c), form)
	switch {
	case models.IsForbidden(err):
		c.Redirect(http.StatusFound, PostURL(post.ID))
		return
	case err != nil:
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, PostURL(post.ID))
}

// AddComment stores a valid comment. An invalid one is dropped without a
// message; either way the visitor lands back on the post.
func (h *PostHandler) AddComment(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	form := forms.BindCommentForm(c)
	if form.IsValid() {
		if _, err := services.AddComment(c.Request.Context(), db.DB, post, middleware.CurrentUser(c), form); err != nil {
			handleError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, PostURL(post.ID))
}

// renderPostForm shows the create page, or the edit page when post is set.
func (h *PostHandler) renderPostForm(c *gin.Context, code int, form *forms.PostForm, post *models.Post) {
	groups, err := services.ListGroups(c.Request.Context(), db.DB)
	if err != nil {
		handleError(c, err)
		return
	}

	data := gin.H{
		"Title":  "Создать новую запись",
		"Form":   form,
		"Groups": groups,
		"IsEdit": false,
	}
	if post != nil {
		data["Title"] = "Редактировать запись"
		data["IsEdit"] = true
		data["Post"] = post
	}
	Render(c, code, "posts/create_post.html", data)
}

// loadPost resolves :post_id, rendering the 404 page itself when the id is
// malformed or unknown.
func (h *PostHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := utils.ParseID(c.Param("post_id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := services.GetPost(c.Request.Context(), db.DB, id)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return post, true
}

func isAuthor(c *gin.Context, post *models.Post) bool {
	user := middleware.CurrentUser(c)
	return user != nil && user.ID == post.AuthorID
}

func PostURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
