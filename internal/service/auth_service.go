package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/novel-reader/internal/auth"
	"github.com/spec-kit/novel-reader/internal/config"
	"github.com/spec-kit/novel-reader/internal/domain"
	"github.com/spec-kit/novel-reader/internal/repository"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

const (
	msgBadCredentials = "Sai tên đăng nhập hoặc mật khẩu"
	msgAccountGone    = "Tài khoản không tồn tại, vui lòng đăng nhập lại"
	msgAccountTaken   = "Tên đăng nhập hoặc email đã được sử dụng"
)

// AuthService coordinates registration, login and token refresh.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput is the new account payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (in RegisterInput) validate() error {
	details := map[string]any{}
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Username)); n < 3 || n > 32 {
		details["username"] = "Tên đăng nhập phải từ 3 đến 32 ký tự"
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		details["email"] = "Email không hợp lệ"
	}
	if len(in.Password) < 6 {
		details["password"] = "Mật khẩu phải có ít nhất 6 ký tự"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("Thông tin đăng ký không hợp lệ", details)
	}
	return nil
}

// Register creates a reader account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, domain.IssuedToken, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, domain.IssuedToken{}, err
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	if taken {
		return nil, domain.IssuedToken{}, apperrors.NewConflict(msgAccountTaken, nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, domain.IssuedToken{}, apperrors.NewConflict(msgAccountTaken, nil)
		}
		return nil, domain.IssuedToken{}, err
	}

	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return user, token, nil
}

// Login authenticates a reader.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, domain.IssuedToken, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.IssuedToken{}, apperrors.NewUnauthorized(msgBadCredentials)
		}
		return nil, domain.IssuedToken{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.IssuedToken{}, apperrors.NewUnauthorized(msgBadCredentials)
	}
	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return user, token, nil
}

// Me returns the authoritative user record for a gated caller. A token whose
// user has disappeared, or whose subject cannot name a user row, is treated
// as invalid.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if !apperrors.ValidID(userID) {
		return nil, apperrors.NewUnauthorized(msgAccountGone)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(msgAccountGone)
		}
		return nil, err
	}
	return user, nil
}

// Refresh issues a new token for a gated caller along with a fresh user copy.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*domain.User, domain.IssuedToken, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return user, token, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
