package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/novel-reader/internal/api/dto"
	"github.com/spec-kit/novel-reader/internal/auth"
	"github.com/spec-kit/novel-reader/internal/service"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

// AuthHandler exposes account endpoints for readers.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Dữ liệu gửi lên không hợp lệ", nil)
	}

	user, token, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewAuthResponse(user, token))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Dữ liệu gửi lên không hợp lệ", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("Vui lòng nhập tên đăng nhập và mật khẩu", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAuthResponse(user, token))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}
	user, err := h.auth.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewUserResponse(user)})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}
	user, token, err := h.auth.Refresh(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAuthResponse(user, token))
}
