package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the JSON API, the HTML pages and the health check on e
// and installs the page renderer.
func RegisterRoutes(e *echo.Echo, users *UserHandler, pages *PageHandler) error {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	// JSON API
	e.GET("/api/users", users.ListUsers)
	e.POST("/api/users", users.CreateUser)
	e.GET("/api/user/:id", users.GetUserByID)
	e.PUT("/api/user/:id", users.UpdateUser)
	e.DELETE("/api/user/:id", users.DeleteUser)
	e.GET("/api/search", users.SearchUsers)
	e.POST("/api/login", users.Login)

	// Pages
	e.GET("/", pages.Index)
	e.GET("/add", pages.ShowAddUser)
	e.POST("/add", pages.AddUser)
	e.GET("/delete/:id", pages.DeleteUser)
	e.GET("/login", pages.ShowLogin)
	e.POST("/login", pages.Login)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "user-directory-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	return nil
}
