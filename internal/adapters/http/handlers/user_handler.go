package handlers

import (
	"loanledger/internal/core/services"
	"loanledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService services.UserManager
	log         *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserManager, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// UpdateRoleRequest represents update role request body
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ListUsers handles listing active users (Manager or Admin)
// @Summary List active users
// @Description Get all active users ordered by username
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListActiveUsers(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "Users retrieved successfully", users)
}

// GetUser handles getting a user by ID (Manager or Admin)
// @Summary Get user by ID
// @Description Get an active user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "User retrieved successfully", user)
}

// UpdateRole handles changing a user's role (Admin only)
// @Summary Update user role
// @Description Overwrite the role of an active user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.UpdateRole(c.UserContext(), id, req.Role); err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "User role updated successfully", nil)
}

// Deactivate handles deactivating a user (Admin only)
// @Summary Deactivate user
// @Description Deactivate a user account. Admins cannot deactivate themselves.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/users/{id} [delete]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Deactivate(c.UserContext(), id); err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "User deactivated successfully", nil)
}
