package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/novel-reader/internal/auth"
	"github.com/spec-kit/novel-reader/internal/config"
	"github.com/spec-kit/novel-reader/internal/domain"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{JWTSecret: "secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(testConfig(), users)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Username: " docgia ", Email: "docgia@example.com", Password: "matkhau1"})
	require.NoError(t, err)
	assert.Equal(t, "docgia", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Zero(t, user.Coins)

	claims, err := svc.TokenManager().ParseToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Found(user.ID), auth.ResolveSubject(claims))

	_, _, err = svc.Register(ctx, RegisterInput{Username: "docgia", Email: "other@example.com", Password: "matkhau1"})
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)

	loggedIn, _, err := svc.Login(ctx, "docgia", "matkhau1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = svc.Login(ctx, "docgia", "sai")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
	_, _, err = svc.Login(ctx, "khong-ton-tai", "matkhau1")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(testConfig(), newFakeUsers())

	_, _, err := svc.Register(context.Background(), RegisterInput{Username: "ab", Email: "nope", Password: "123"})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Contains(t, de.Details, "username")
	assert.Contains(t, de.Details, "email")
	assert.Contains(t, de.Details, "password")
}

func TestAuthService_MeAndRefresh(t *testing.T) {
	const userID = "0d2f3c4b-5a69-4788-9f10-aa11bb22cc33"
	users := newFakeUsers(&domain.User{ID: userID, Username: "a", Role: domain.RoleUser, Coins: 100})
	svc := NewAuthService(testConfig(), users)
	ctx := context.Background()

	me, err := svc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), me.Coins)

	user, token, err := svc.Refresh(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NotEmpty(t, token.Token)

	_, err = svc.Me(ctx, "0d2f3c4b-5a69-4788-9f10-000000000000")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
	_, _, err = svc.Refresh(ctx, "0d2f3c4b-5a69-4788-9f10-000000000000")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
}

func TestAuthService_NonUUIDSubjectIsUnauthorized(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(testConfig(), users)
	ctx := context.Background()

	for _, subject := range []string{"42", "m1", ""} {
		_, err := svc.Me(ctx, subject)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeUnauthorized, de.Code, subject)
		assert.Equal(t, msgAccountGone, de.Message)

		_, _, err = svc.Refresh(ctx, subject)
		assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code, subject)
	}
	assert.Zero(t, users.calls)
}
