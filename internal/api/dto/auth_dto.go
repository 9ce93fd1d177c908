package dto

import (
	"time"

	"github.com/spec-kit/novel-reader/internal/domain"
)

// RegisterRequest payload for new readers.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a reader account.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Coins    int64  `json:"coins"`
	Avatar   string `json:"avatar,omitempty"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		Coins:    u.Coins,
		Avatar:   u.Avatar,
	}
}

// NewAuthResponse pairs a user with a freshly issued token.
func NewAuthResponse(u *domain.User, token domain.IssuedToken) AuthResponse {
	return AuthResponse{
		Success:   true,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      NewUserResponse(u),
	}
}
