package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/router"
	"yatube/internal/storage"
	"yatube/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "war-and-peace"

// captureRender stands in for the template renderer and remembers what each
// handler asked to render.
type captureRender struct {
	mu   sync.Mutex
	name string
	data gin.H
}

func (r *captureRender) Instance(name string, data any) render.Render {
	h, _ := data.(gin.H)
	r.mu.Lock()
	r.name, r.data = name, h
	r.mu.Unlock()
	return render.Data{ContentType: "text/html; charset=utf-8", Data: []byte(name)}
}

func (r *captureRender) last() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.data
}

type app struct {
	t     *testing.T
	r     *gin.Engine
	html  *captureRender
	conn  *gorm.DB
	cache *utils.LRUCache
	media string
}

var smallGIF = []byte("GIF89a\x02\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x00\x00\x00\x00\x00,\x00\x00\x00\x00\x02\x00\x01\x00\x00\x02\x02\x0c\n\x00;")

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))
	db.DB = conn

	cache, err := utils.NewLRUCache(16)
	require.NoError(t, err)
	media := t.TempDir()
	store, err := storage.NewLocalStore(media, "/media")
	require.NoError(t, err)

	html := &captureRender{}
	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions("yatube_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r, router.Deps{Cache: cache, Store: store, IndexCacheTTL: time.Minute, SiteURL: "http://testserver/"})

	return &app{t: t, r: r, html: html, conn: conn, cache: cache, media: media}
}

func (a *app) user(username string) *models.User {
	a.t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(a.t, err)
	u := &models.User{Username: username, Password: hash}
	require.NoError(a.t, a.conn.Create(u).Error)
	return u
}

func (a *app) group(slug string) *models.Group {
	a.t.Helper()
	var g models.Group
	require.NoError(a.t, a.conn.Where("slug = ?", slug).First(&g).Error)
	return &g
}

func (a *app) post(author *models.User, text string, group *models.Group) *models.Post {
	a.t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(a.t, a.conn.Omit("Author", "Group").Create(p).Error)
	return p
}

func (a *app) count(model any) int64 {
	a.t.Helper()
	var n int64
	require.NoError(a.t, a.conn.Model(model).Count(&n).Error)
	return n
}

// login signs u in through the real login page and returns the session
// cookies.
func (a *app) login(u *models.User) []*http.Cookie {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/login/", url.Values{"username": {u.Username}, "password": {testPassword}}, nil)
	require.Equal(a.t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(a.t, cookies)
	return cookies
}

func (a *app) do(method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

// upload posts a multipart form with an optional image the way the post form
// sends it.
func (a *app) upload(path string, fields map[string]string, filename string, image []byte, cookies []*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(a.t, err)
		_, err = part.Write(image)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *app) storedImages() []os.DirEntry {
	a.t.Helper()
	entries, err := os.ReadDir(filepath.Join(a.media, storage.KeyPrefix))
	require.NoError(a.t, err)
	return entries
}

func (a *app) get(path string, cookies []*http.Cookie) (*httptest.ResponseRecorder, string, gin.H) {
	w := a.do(http.MethodGet, path, nil, cookies)
	name, data := a.html.last()
	return w, name, data
}

func loginRedirect(path string) string {
	return "/auth/login/?next=" + strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

func TestIndexPagination(t *testing.T) {
	a := newApp(t)
	author := a.user("leo")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		p := &models.Post{Text: fmt.Sprintf("Пост номер %d", i), AuthorID: author.ID, PubDate: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, a.conn.Omit("Author", "Group").Create(p).Error)
	}

	tests := []struct {
		query     string
		wantPage  int
		wantPosts int
		wantFirst string
	}{
		{"", 1, 10, "Пост номер 12"},
		{"?page=2", 2, 3, "Пост номер 2"},
		{"?page=99", 2, 3, "Пост номер 2"},
		{"?page=0", 1, 10, "Пост номер 12"},
		{"?page=abc", 1, 10, "Пост номер 12"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			w, name, data := a.get("/"+tc.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "posts/index.html", name)
			page := data["Page"].(pagination.Page)
			posts := data["Posts"].([]models.Post)
			assert.Equal(t, tc.wantPage, page.Number)
			assert.Equal(t, 2, page.NumPages)
			require.Len(t, posts, tc.wantPosts)
			assert.Equal(t, tc.wantFirst, posts[0].Text)
			assert.Equal(t, "leo", posts[0].Author.Username)
		})
	}
}

func TestIndexIsCached(t *testing.T) {
	a := newApp(t)
	author := a.user("leo")
	a.post(author, "первый пост", nil)

	_, _, data := a.get("/", nil)
	require.Len(t, data["Posts"].([]models.Post), 1)

	a.post(author, "второй пост", nil)
	_, _, data = a.get("/", nil)
	assert.Len(t, data["Posts"].([]models.Post), 1, "index should be served from cache")

	require.NoError(t, a.cache.Delete(t.Context(), "index:page:1"))
	_, _, data = a.get("/", nil)
	assert.Len(t, data["Posts"].([]models.Post), 2)
}

func TestIndexShowsCurrentUserDespiteCache(t *testing.T) {
	a := newApp(t)
	author := a.user("leo")
	a.post(author, "пост", nil)

	_, _, data := a.get("/", nil)
	assert.NotContains(t, data, "CurrentUser")

	_, _, data = a.get("/", a.login(author))
	require.Contains(t, data, "CurrentUser")
	assert.Equal(t, "leo", data["CurrentUser"].(*models.User).Username)
}

func TestGroupPosts(t *testing.T) {
	a := newApp(t)
	author := a.user("leo")
	cats := a.group("cats")
	a.post(author, "про котиков", cats)
	a.post(author, "про путешествия", a.group("travel"))

	w, name, data := a.get("/group/cats/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts/group_list.html", name)
	assert.Equal(t, "cats", data["Group"].(*models.Group).Slug)
	posts := data["Posts"].([]models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "про котиков", posts[0].Text)

	w, name, _ = a.get("/group/dogs/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error.html", name)
}

func TestProfile(t *testing.T) {
	a := newApp(t)
	leo := a.user("leo")
	reader := a.user("reader")
	a.post(leo, "один", nil)
	a.post(leo, "два", nil)
	a.post(reader, "чужой", nil)

	w, name, data := a.get("/profile/leo/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts/profile.html", name)
	assert.EqualValues(t, 2, data["AuthorPostsCount"])
	assert.Equal(t, false, data["Following"])
	assert.Len(t, data["Posts"].([]models.Post), 2)

	cookies := a.login(reader)
	a.do(http.MethodGet, "/profile/leo/follow/", nil, cookies)
	_, _, data = a.get("/profile/leo/", cookies)
	assert.Equal(t, true, data["Following"])

	_, _, data = a.get("/profile/leo/", a.login(leo))
	assert.Equal(t, false, data["Following"])

	w, _, _ = a.get("/profile/nobody/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetail(t *testing.T) {
	a := newApp(t)
	leo := a.user("leo")
	text := strings.Repeat("а", 40)
	post := a.post(leo, text, nil)
	a.post(leo, "ещё один", nil)
	require.NoError(t, a.conn.Create(&models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "комментарий"}).Error)

	w, name, data := a.get(handlers.PostURL(post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts/post_detail.html", name)
	assert.Equal(t, "Пост "+strings.Repeat("а", 29)+"…", data["Title"])
	assert.EqualValues(t, 2, data["AuthorPostsCount"])
	assert.Equal(t, text, data["Post"].(*models.Post).Text)
	comments := data["Comments"].([]models.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "комментарий", comments[0].Text)
	form := data["Form"].(*forms.CommentForm)
	assert.False(t, form.IsValid())

	for _, path := range []string{"/posts/999/", "/posts/abc/"} {
		w, name, _ = a.get(path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "error.html", name)
	}
}

func TestAnonymousIsRedirectedWithoutMutation(t *testing.T) {
	a := newApp(t)
	leo := a.user("leo")
	post := a.post(leo, "исходный текст", nil)
	postsBefore := a.count(&models.Post{})

	tests := []struct {
		method string
		path   string
		form   url.Values
	}{
		{http.MethodGet, "/create/", nil},
		{http.MethodPost, "/create/", url.Values{"text": {"новый пост"}}},
		{http.MethodGet, handlers.PostURL(post.ID) + "edit/", nil},
		{http.MethodPost, handlers.PostURL(post.ID) + "edit/", url.Values{"text": {"взлом"}}},
		{http.MethodPost, handlers.PostURL(post.ID) + "comment/", url.Values{"text": {"коммент"}}},
		{http.MethodGet, "/follow/", nil},
		{http.MethodGet, "/profile/leo/follow/", nil},
		{http.MethodGet, "/profile/leo/unfollow/", nil},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := a.do(tc.method, tc.path, tc.form, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, loginRedirect(tc.path), w.Header().Get("Location"))
		})
	}

	w := a.do(http.MethodGet, handlers.PostURL(post.ID)+"edit/", nil, nil)
	assert.Equal(t, fmt.Sprintf("/auth/login/?next=/posts/%d/edit/", post.ID), w.Header().Get("Location"))

	assert.Equal(t, postsBefore, a.count(&models.Post{}))
	assert.Zero(t, a.count(&models.Comment{}))
	assert.Zero(t, a.count(&models.Follow{}))
	var fresh models.Post
	require.NoError(t, a.conn.First(&fresh, post.ID).Error)
	assert.Equal(t, "исходный текст", fresh.Text)
}

func TestCreatePost(t *testing.T) {
	a := newApp(t)
	leo := a.user("leo")
	cookies := a.login(leo)
	group := a.group("travel")

	w, name, data := a.get("/create/", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts/create_post.html", name)
	assert.Equal(t, false, data["IsEdit"])
	assert.Len(t, data["Groups"].([]models.Group), 3)

	w = a.do(http.MethodPost, "/create/", url.Values{"text": {"Новый пост"}, "group": {fmt.Sprint(group.ID)}}, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.EqualValues(t, 1, a.count(&models.Post{}))

	_, _, data = a.get("/profile/leo/", nil)
	posts := data["Posts"].([]models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "Новый пост", posts[0].Text)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "travel", posts[0].Group.Slug)

	_, _, data = a.get(handlers.PostURL(posts[0].ID), nil)
	assert.EqualValues(t, 1, data["AuthorPostsCount"])

	_, _, data = a.get("/group/travel/", nil)
	assert.Len(t, data["Posts"].([]models.Post), 1)
}

func TestCreatePostWithImage(t *testing.T) {
	a := newApp(t)
	cookies := a.login(a.user("leo"))

	payload := append(append([]byte{}, smallGIF...), []byte("<script>alert(document.cookie)</script>")...)
	w := a.upload("/create/", map[string]string{"text": "пост с картинкой"}, "evil.html", payload, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, a.conn.First(&post).Error)
	assert.Equal(t, "пост с картинкой", post.Text)
	assert.True(t, strings.HasPrefix(post.Image, storage.KeyPrefix))
	assert.True(t, strings.HasSuffix(post.Image, ".gif"), post.Image)

	stored, err := os.ReadFile(filepath.Join(a.media, filepath.FromSlash(post.Image)))
	require.NoError(t, err)
	assert.Equal(t, payload, stored)

	_, _, data := a.get(handlers.PostURL(post.ID), nil)
	assert.Equal(t, "/media/"+post.Image, data["Post"].(*models.Post).ImageURL)
}

func TestCreatePostInvalid(t *testing.T) {
	a := newApp(t)
	cookies := a.login(a.user("leo"))

	w := a.do(http.MethodPost, "/create/", url.Values{"text": {"  "}, "group": {"12345"}}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	name, data := a.html.last()
	assert.Equal(t, "posts/create_post.html", name)
	form := data["Form"].(*forms.PostForm)
	assert.True(t, form.Errors.Has("text"))
	assert.True(t, form.Errors.Has("group"))
	assert.Zero(t, a.count(&models.Post{}))
}

func TestEditPost(t *testing.T) {
	a := newApp(t)
	leo := a.user("leo")
	other := a.user("other")
	travel := a.group("travel")
	post := a.post(leo, "исходный текст", travel)
	require.NoError(t, a.conn.Model(post).Update("image", "posts/original.gif").Error)
	editURL := handlers.PostURL(post.ID) + "edit/"

	t.Run("non author is sent back", func(t *testing.T) {
		cookies := a.login(other)
		w := a.do(http.MethodGet, editURL, nil, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, handlers.PostURL(post.ID), w.Header().Get("Location"))

		w = a.do(http.MethodPost, editURL, url.Values{"text": {"чужая правка"}}, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, handlers.PostURL(post.ID), w.Header().Get("Location"))

		var fresh models.Post
		require.NoError(t, a.conn.First(&fresh, post.ID).Error)
		assert.Equal(t, "исходный текст", fresh.Text)
		require.NotNil(t, fresh.GroupID)
		assert.Equal(t, travel.ID, *fresh.GroupID)
		assert.Equal(t, leo.ID, fresh.AuthorID)
		assert.Equal(t, "posts/original.gif", fresh.Image)
	})

	t.Run("non author cannot replace or clear the image", func(t *testing.T) {
		cookies := a.login(other)
		w := a.upload(editURL, map[string]string{"text": "чужая картинка"}, "other.gif", smallGIF, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, handlers.PostURL(post.ID), w.Header().Get("Location"))

		w = a.upload(editURL, map[string]string{"text": "без картинки", "image-clear": "on"}, "", nil, cookies)
		assert.Equal(t, http.StatusFound, w.Code)

		var fresh models.Post
		require.NoError(t, a.conn.First(&fresh, post.ID).Error)
		assert.Equal(t, "исходный текст", fresh.Text)
		require.NotNil(t, fresh.GroupID)
		assert.Equal(t, travel.ID, *fresh.GroupID)
		assert.Equal(t, "posts/original.gif", fresh.Image)
		assert.Empty(t, a.storedImages())
	})

	t.Run("author edits", func(t *testing.T) {
		cookies := a.login(leo)
		w, name, data := a.get(editURL, cookies)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "posts/create_post.html", name)
		assert.Equal(t, true, data["IsEdit"])
		assert.Equal(t, "Редактировать запись", data["Title"])
		assert.Equal(t, "исходный текст", data["Form"].(*forms.PostForm).RawText)

		w = a.do(http.MethodPost, editURL, url.Values{"text": {""}}, cookies)
		assert.Equal(t, http.StatusOK, w.Code)

		w = a.do(http.MethodPost, editURL, url.Values{"text": {"исправленный текст"}}, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, handlers.PostURL(post.ID), w.Header().Get("Location"))

		var fresh models.Post
		require.NoError(t, a.conn.First(&fresh, post.ID).Error)
		assert.Equal(t, "исправленный текст", fresh.Text)
		assert.Nil(t, fresh.GroupID)
		assert.EqualValues(t, 1, a.count(&models.Post{}))
	})

	t.Run("unknown post", func(t *testing.T) {
		w := a.do(http.MethodGet, "/posts/999/edit/", nil, a.login(leo))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAddComment(t *testing.T) {
	a := newApp(t)
	leo := a.user("leo")
	post := a.post(leo, "пост", nil)
	commentURL := handlers.PostURL(post.ID) + "comment/"
	cookies := a.login(a.user("reader"))

	w := a.do(http.MethodPost, commentURL, url.Values{"text": {"Отличный пост"}}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, handlers.PostURL(post.ID), w.Header().Get("Location"))
	assert.EqualValues(t, 1, a.count(&models.Comment{}))

	_, _, data := a.get(handlers.PostURL(post.ID), nil)
	comments := data["Comments"].([]models.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "reader", comments[0].Author.Username)

	w = a.do(http.MethodPost, commentURL, url.Values{"text": {""}}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, handlers.PostURL(post.ID), w.Header().Get("Location"))
	assert.EqualValues(t, 1, a.count(&models.Comment{}))

	w = a.do(http.MethodPost, "/posts/999/comment/", url.Values{"text": {"в пустоту"}}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 1, a.count(&models.Comment{}))
}

func TestFollowLifecycle(t *testing.T) {
	a := newApp(t)
	reader := a.user("reader")
	b := a.user("b")
	c := a.user("c")
	a.post(b, "пост b", nil)
	a.post(c, "пост c", nil)
	cookies := a.login(reader)

	_, name, data := a.get("/follow/", cookies)
	assert.Equal(t, "posts/follow.html", name)
	assert.Empty(t, data["Posts"].([]models.Post))

	for i := 0; i < 2; i++ {
		w := a.do(http.MethodGet, "/profile/b/follow/", nil, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, handlers.FeedURL, w.Header().Get("Location"))
	}
	assert.EqualValues(t, 1, a.count(&models.Follow{}))

	_, _, data = a.get("/follow/", cookies)
	posts := data["Posts"].([]models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "пост b", posts[0].Text)

	w := a.do(http.MethodGet, "/profile/reader/follow/", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 1, a.count(&models.Follow{}))

	w = a.do(http.MethodGet, "/profile/c/unfollow/", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 1, a.count(&models.Follow{}))

	w = a.do(http.MethodPost, "/profile/b/unfollow/", url.Values{}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Zero(t, a.count(&models.Follow{}))

	_, _, data = a.get("/follow/", cookies)
	assert.Empty(t, data["Posts"].([]models.Post))

	w = a.do(http.MethodGet, "/profile/nobody/follow/", nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodGet, "/profile/nobody/unfollow/", nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/auth/signup/", url.Values{
		"first_name": {"Лев"},
		"last_name":  {"Толстой"},
		"username":   {"leo"},
		"email":      {"leo@example.com"},
		"password1":  {testPassword},
		"password2":  {testPassword},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()

	_, _, data := a.get("/follow/", cookies)
	require.Contains(t, data, "CurrentUser")
	assert.Equal(t, "Лев Толстой", data["CurrentUser"].(*models.User).FullName())

	w = a.do(http.MethodPost, "/auth/signup/", url.Values{
		"username":  {"leo"},
		"password1": {testPassword},
		"password2": {testPassword},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	name, data := a.html.last()
	assert.Equal(t, "auth/signup.html", name)
	assert.True(t, data["Form"].(*forms.SignupForm).Errors.Has("username"))
	assert.EqualValues(t, 1, a.count(&models.User{}))

	w = a.do(http.MethodPost, "/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, data = a.html.last()
	assert.True(t, data["Form"].(*forms.LoginForm).Errors.Has(forms.NonFieldErrors))

	w = a.do(http.MethodPost, "/auth/login/", url.Values{"username": {"leo"}, "password": {testPassword}, "next": {"/follow/"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))

	w, name, data = a.get("/auth/logout/", w.Result().Cookies())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "auth/logged_out.html", name)
	assert.NotContains(t, data, "CurrentUser")
}

func TestLoginPagePrefillsNext(t *testing.T) {
	a := newApp(t)
	_, name, data := a.get(loginRedirect("/create/"), nil)
	assert.Equal(t, "auth/login.html", name)
	assert.Equal(t, "/create/", data["Form"].(*forms.LoginForm).Next)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/follow/":              "/follow/",
		"/posts/1/?page=2":      "/posts/1/?page=2",
		"//evil.example":        "/",
		"https://evil.example/": "/",
		`/\evil.example`:        "/",
		"relative/path":         "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, handlers.SafeNext(in), in)
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newApp(t)
	w, name, data := a.get("/no/such/page/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error.html", name)
	assert.Equal(t, "/no/such/page/", data["Path"])
}

func TestSitemapAndRobots(t *testing.T) {
	a := newApp(t)
	post := a.post(a.user("leo"), "пост", nil)

	w := a.do(http.MethodGet, "/sitemap.xml", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<loc>http://testserver/</loc>")
	assert.Contains(t, body, "<loc>http://testserver/group/cats/</loc>")
	assert.Contains(t, body, "<loc>http://testserver"+handlers.PostURL(post.ID)+"</loc>")

	w = a.do(http.MethodGet, "/robots.txt", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sitemap: http://testserver/sitemap.xml")
}
