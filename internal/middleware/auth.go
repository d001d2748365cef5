package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"yatube/internal/db"
	"yatube/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user's id.
const SessionUserKey = "user_id"

// LoginURL is where unauthenticated visitors of protected pages are sent.
const LoginURL = "/auth/login/"

// LoginRedirect is the login page URL that returns to uri afterwards.
// Slashes stay readable, everything else in uri is query-escaped.
func LoginRedirect(uri string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(uri), "%2F", "/")
}

// AuthRequired sends anonymous visitors to the login page, remembering
// where they were headed. The wrapped handler never runs for them.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			err := db.DB.WithContext(c.Request.Context()).First(&user, userID).Error
			switch {
			case err == nil:
				c.Set(CheckUserKey, &user)
			case models.IsNotFound(err):
				// account is gone; drop the stale session
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				zap.L().Error("load session user", zap.Any("user_id", userID), zap.Error(err))
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
