package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"user-directory-service/internal/common"
	"user-directory-service/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

// errorMessages holds the client-facing text per error kind. Validation
// messages depend on the route and are passed explicitly.
var errorMessages = map[error]struct {
	status  int
	message string
}{
	common.ErrNotFound:      {http.StatusNotFound, "User not found"},
	common.ErrAlreadyExists: {http.StatusConflict, "Email already exists"},
	common.ErrUnauthorized:  {http.StatusUnauthorized, "Invalid credentials"},
}

// errorResponse maps a service error onto a status and a JSON error body.
// Anything unclassified is a 500.
func errorResponse(c echo.Context, err error, validationMessage string) error {
	if errors.Is(err, common.ErrValidation) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationMessage})
	}
	for kind, m := range errorMessages {
		if errors.Is(err, kind) {
			return c.JSON(m.status, map[string]string{"error": m.message})
		}
	}
	log.Error().Err(err).Msgf("%s %s failed", c.Request().Method, c.Request().URL.Path)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// paramID parses the :id path segment. A non-numeric id cannot name a user,
// so it reads as not found.
func paramID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, common.ErrNotFound
	}
	return id, nil
}

// ListUsers returns all users --> GET /api/users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return errorResponse(c, err, "")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserByID retrieves a user by ID --> GET /api/user/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err, "")
	}

	user, err := h.userService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err, "")
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a new user --> POST /api/users
func (h *UserHandler) CreateUser(c echo.Context) error {
	req := userRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return errorResponse(c, err, "Missing fields")
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/user/%d", user.ID))
	return c.JSON(http.StatusCreated, map[string]string{"message": "User created"})
}

// UpdateUser changes name and email --> PUT /api/user/:id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err, "")
	}

	req := userRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.userService.UpdateUser(c.Request().Context(), id, req.Name, req.Email); err != nil {
		return errorResponse(c, err, "Missing fields")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User updated"})
}

// DeleteUser removes a user --> DELETE /api/user/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err, "")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return errorResponse(c, err, "")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": fmt.Sprintf("User %d deleted", id)})
}

// SearchUsers finds users by name substring --> GET /api/search?name=
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.userService.SearchUsers(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return errorResponse(c, err, "Please provide a name")
	}
	return c.JSON(http.StatusOK, users)
}

// Login checks credentials --> POST /api/login
func (h *UserHandler) Login(c echo.Context) error {
	req := loginRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errorResponse(c, err, "Missing credentials")
	}
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", UserID: user.ID})
}
