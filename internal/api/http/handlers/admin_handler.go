package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/novel-reader/internal/api/dto"
	"github.com/spec-kit/novel-reader/internal/repository"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

// AdminHandler exposes moderator lookups behind the admin gate.
type AdminHandler struct {
	users repository.UserRepository
	views repository.ViewRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users repository.UserRepository, views repository.ViewRepository) *AdminHandler {
	return &AdminHandler{users: users, views: views}
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if !apperrors.ValidID(id) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewUserResponse(user)})
}

// StoryViews handles GET /admin/stories/:id/views.
func (h *AdminHandler) StoryViews(c *fiber.Ctx) error {
	id := c.Params("id")
	if !apperrors.ValidID(id) {
		return apperrors.NewNotFound("story", map[string]any{"id": id})
	}
	n, err := h.views.StoryViews(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.ViewsResponse{Success: true, Views: n})
}
