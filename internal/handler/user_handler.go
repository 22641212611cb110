package handler

import (
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile
// GET /api/v1/auth/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, service.ErrInvalidToken)
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusOK, "Profile retrieved", user)
}

// UpdateProfile changes name, phone or password of the caller
// PUT /api/v1/auth/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, service.ErrInvalidToken)
	}

	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, fiber.StatusOK, "Profile updated", user)
}
