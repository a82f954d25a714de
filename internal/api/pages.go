package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"user-directory-service/internal/common"
	"user-directory-service/internal/entity"
	"user-directory-service/internal/service"
)

// PageHandler serves the browser-facing pages. Failures are answered with
// plain text instead of JSON.
type PageHandler struct {
	userService *service.UserService
}

func NewPageHandler(userService *service.UserService) *PageHandler {
	return &PageHandler{userService: userService}
}

type indexPage struct {
	Users []entity.User
}

func plainError(c echo.Context, err error, validationMessage string) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return c.String(http.StatusBadRequest, validationMessage)
	case errors.Is(err, common.ErrAlreadyExists):
		return c.String(http.StatusConflict, "Email already exists")
	case errors.Is(err, common.ErrUnauthorized):
		return c.String(http.StatusUnauthorized, "Invalid credentials")
	}
	log.Error().Err(err).Msgf("%s %s failed", c.Request().Method, c.Request().URL.Path)
	return c.String(http.StatusInternalServerError, "Internal server error")
}

// Index lists all users --> GET /
func (h *PageHandler) Index(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return plainError(c, err, "")
	}
	return c.Render(http.StatusOK, "index.html", indexPage{Users: users})
}

// ShowAddUser renders the add form --> GET /add
func (h *PageHandler) ShowAddUser(c echo.Context) error {
	return c.Render(http.StatusOK, "add_user.html", nil)
}

// AddUser handles the add form --> POST /add
func (h *PageHandler) AddUser(c echo.Context) error {
	_, err := h.userService.CreateUser(c.Request().Context(), c.FormValue("name"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		return plainError(c, err, "Missing fields")
	}
	return c.Redirect(http.StatusFound, "/")
}

// DeleteUser removes a user and goes back to the list --> GET /delete/:id
// An id that matches nothing is not reported.
func (h *PageHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	err = h.userService.DeleteUser(c.Request().Context(), id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return plainError(c, err, "")
	}
	return c.Redirect(http.StatusFound, "/")
}

// ShowLogin renders the login form --> GET /login
func (h *PageHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", nil)
}

// Login handles the login form --> POST /login
func (h *PageHandler) Login(c echo.Context) error {
	user, err := h.userService.Login(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		// the form answers a blank field like any other failed attempt
		if errors.Is(err, common.ErrValidation) {
			err = common.ErrUnauthorized
		}
		return plainError(c, err, "")
	}
	return c.String(http.StatusOK, fmt.Sprintf("Welcome, %s!", user.Name))
}
