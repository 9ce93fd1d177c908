package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/novel-reader/internal/api/dto"
	"github.com/spec-kit/novel-reader/internal/service"
)

// StoriesHandler records story and chapter views.
type StoriesHandler struct {
	views *service.ViewService
}

// NewStoriesHandler constructs handler.
func NewStoriesHandler(views *service.ViewService) *StoriesHandler {
	return &StoriesHandler{views: views}
}

// IncrementViews handles POST /stories/:id/increment-views.
func (h *StoriesHandler) IncrementViews(c *fiber.Ctx) error {
	n, err := h.views.IncrementStory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ViewsResponse{Success: true, Views: n})
}

// IncrementChapterViews handles POST /stories/:id/chapters/:chapterId/increment-views.
func (h *StoriesHandler) IncrementChapterViews(c *fiber.Ctx) error {
	n, err := h.views.IncrementChapter(c.UserContext(), c.Params("id"), c.Params("chapterId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ViewsResponse{Success: true, Views: n})
}
