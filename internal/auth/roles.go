package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/novel-reader/internal/domain"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

// MsgForbidden is returned to signed-in callers without the admin role.
const MsgForbidden = "Bạn không có quyền truy cập"

// RoleLookup resolves a user's role.
type RoleLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireAdmin ensures the gated caller is an administrator. It must run
// after a bearer gate.
func RequireAdmin(users RoleLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserIDFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, MsgLoginRequired)
		}
		if !apperrors.ValidID(userID) {
			return fiber.NewError(http.StatusForbidden, MsgForbidden)
		}
		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}
		if !user.IsAdmin() {
			return fiber.NewError(http.StatusForbidden, MsgForbidden)
		}
		return c.Next()
	}
}
