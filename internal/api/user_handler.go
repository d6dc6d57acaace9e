package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/internal/middleware"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// UserHandler handles API endpoints related to user profiles.
type UserHandler struct {
	userService core.UserService
	errorHandler
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, errorHandler: errorHandler{logger: logger}}
}

// CreateProfile handles POST /users/profile for the authenticated caller.
func (h *UserHandler) CreateProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateProfileRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}

	user, err := h.userService.CreateProfile(c.Request.Context(), uid, c.GetString(middleware.ContextUserEmail), req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetCurrentUserProfile handles GET /users/me
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), uid)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users?zone=
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), strings.TrimSpace(c.Query("zone")))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:uid
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PATCH /users/:uid
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	user, err := h.userService.Update(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:uid
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("uid")); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendPasswordReset handles POST /users/:uid/password-reset
func (h *UserHandler) SendPasswordReset(c *gin.Context) {
	if err := h.userService.SendPasswordReset(c.Request.Context(), c.Param("uid")); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "Password reset email sent"})
}
