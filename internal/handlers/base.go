package handlers

import (
	"net/http"
	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Code": code, "Path": c.Request.URL.Path})
}

// NotFound renders the shared 404 page. It also serves as the router's
// NoRoute handler.
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "Страница не найдена")
}

// handleError maps a service failure onto a response: missing records
// become the 404 page, anything else is logged and rendered as a 500.
func handleError(c *gin.Context, err error) {
	if models.IsNotFound(err) {
		NotFound(c)
		return
	}
	_ = c.Error(err)
	zap.L().Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	RenderError(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
}
