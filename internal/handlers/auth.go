package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgUsernameTaken  = "Пользователь с таким именем уже существует."
	msgBadCredentials = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", gin.H{"Title": "Зарегистрироваться", "Form": forms.NewSignupForm()})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	form := forms.BindSignupForm(c)
	if !form.IsValid() {
		Render(c, http.StatusOK, "auth/signup.html", gin.H{"Title": "Зарегистрироваться", "Form": form})
		return
	}

	user, err := services.CreateUser(c.Request.Context(), db.DB, form)
	if errors.Is(err, services.ErrUsernameTaken) {
		form.Errors.Add("username", msgUsernameTaken)
		Render(c, http.StatusOK, "auth/signup.html", gin.H{"Title": "Зарегистрироваться", "Form": form})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	zap.L().Info("user signed up", zap.Uint("user_id", user.ID))

	if err := logIn(c, user); err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Войти", "Form": forms.NewLoginForm(c.Query("next"))})
}

func (h *AuthHandler) Login(c *gin.Context) {
	form := forms.BindLoginForm(c)
	if !form.IsValid() {
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Войти", "Form": form})
		return
	}

	user, err := services.Authenticate(c.Request.Context(), db.DB, form.Username, form.Password)
	if errors.Is(err, services.ErrBadCredentials) {
		form.Errors.Add(forms.NonFieldErrors, msgBadCredentials)
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Войти", "Form": form})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	if err := logIn(c, user); err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, SafeNext(form.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		handleError(c, err)
		return
	}
	c.Set(middleware.CheckUserKey, nil)
	Render(c, http.StatusOK, "auth/logged_out.html", gin.H{"Title": "Вы вышли из своей учётной записи"})
}

func logIn(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		return models.NewInternalError(err)
	}
	c.Set(middleware.CheckUserKey, user)
	return nil
}

// SafeNext returns next when it is a path on this site, and "/" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
