package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/novel-reader/internal/api/dto"
	"github.com/spec-kit/novel-reader/internal/auth"
	"github.com/spec-kit/novel-reader/internal/service"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

// ChaptersHandler serves chapter reads and purchases.
type ChaptersHandler struct {
	chapters *service.ChapterService
}

// NewChaptersHandler constructs handler.
func NewChaptersHandler(chapters *service.ChapterService) *ChaptersHandler {
	return &ChaptersHandler{chapters: chapters}
}

// Get handles GET /chapters/:id. Anonymous callers are allowed.
func (h *ChaptersHandler) Get(c *fiber.Ctx) error {
	viewerID, _ := auth.UserIDFromContext(c)
	view, err := h.chapters.Get(c.UserContext(), c.Params("id"), viewerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewChapterResponse(view))
}

// Purchase handles POST /chapters/purchase/:chapterId.
func (h *ChaptersHandler) Purchase(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}
	if _, err := h.chapters.Purchase(c.UserContext(), userID, c.Params("chapterId")); err != nil {
		return err
	}
	return c.JSON(dto.PurchaseResponse{Success: true, Message: service.PurchaseSuccessMessage})
}
