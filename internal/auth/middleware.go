package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

const userIDKey = "auth_user_id"

type userIDCtxKey struct{}

// Messages returned to clients. They ask the reader to log in again.
const (
	MsgLoginRequired  = "Vui lòng đăng nhập để tiếp tục"
	MsgInvalidFormat  = "Định dạng token không hợp lệ, vui lòng đăng nhập lại"
	MsgTokenInvalid   = "Phiên đăng nhập không hợp lệ hoặc đã hết hạn, vui lòng đăng nhập lại"
	MsgMissingSubject = "Không tìm thấy thông tin người dùng trong token, vui lòng đăng nhập lại"
)

// GateOptions parameterizes a bearer gate. Every gate shares the same
// error precedence; only the name and log verbosity differ.
type GateOptions struct {
	Name    string
	Verbose bool
}

// AuthMiddleware validates bearer tokens and attaches the caller's user id.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication with the default, quiet gate.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	return m.check(c, m.logger.With(zap.String("gate", "api")), false)
}

// Gate returns a bearer gate with its own name and verbosity.
func (m *AuthMiddleware) Gate(opts GateOptions) fiber.Handler {
	name := opts.Name
	if name == "" {
		name = "api"
	}
	log := m.logger.With(zap.String("gate", name))
	return func(c *fiber.Ctx) error {
		return m.check(c, log, opts.Verbose)
	}
}

// Optional attaches the caller's id when a valid bearer token is present and
// lets anonymous or badly authenticated requests through untouched.
func (m *AuthMiddleware) Optional() fiber.Handler {
	log := m.logger.With(zap.String("gate", "optional"))
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		userID, err := m.Authenticate(header)
		if err != nil {
			log.Debug("optional auth ignored", zap.String("path", c.Path()), zap.Error(err))
			return c.Next()
		}
		attach(c, userID)
		return c.Next()
	}
}

func (m *AuthMiddleware) check(c *fiber.Ctx, log *zap.Logger, verbose bool) error {
	userID, err := m.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		level := zapcore.DebugLevel
		if verbose {
			level = zapcore.WarnLevel
		}
		log.Log(level, "auth rejected",
			zap.String("path", c.Path()),
			zap.String("code", apperrors.ToDomainError(err).Code),
			zap.Error(err),
		)
		return err
	}

	level := zapcore.DebugLevel
	if verbose {
		level = zapcore.InfoLevel
	}
	log.Log(level, "auth accepted", zap.String("path", c.Path()), zap.String("user_id", userID))

	attach(c, userID)
	return c.Next()
}

// Authenticate applies the gate's checks to a raw Authorization header value,
// in order: missing header, malformed header, bad token, missing subject.
func (m *AuthMiddleware) Authenticate(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthenticated(MsgLoginRequired)
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", apperrors.NewInvalidFormat(MsgInvalidFormat)
	}

	if m.tokens == nil {
		return "", apperrors.NewTokenInvalid(MsgTokenInvalid, errors.New("token verification unavailable"))
	}
	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return "", apperrors.NewTokenInvalid(MsgTokenInvalid, err)
	}

	subject := ResolveSubject(claims)
	if !subject.Found {
		return "", apperrors.NewMissingSubject(MsgMissingSubject)
	}
	return subject.ID, nil
}

func attach(c *fiber.Ctx, userID string) {
	c.Locals(userIDKey, userID)
	c.SetUserContext(WithUserID(c.UserContext(), userID))
}

// UserIDFromContext returns the id attached by a gate.
func UserIDFromContext(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID stores the caller's id on a context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// UserIDFromCtx reads the id stored by WithUserID.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDCtxKey{}).(string)
	return id, ok && id != ""
}
