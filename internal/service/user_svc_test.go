package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
)

func registerUser(t *testing.T, env *testEnv, email, password string) *dto.LoginResponse {
	t.Helper()
	resp, err := env.userSvc.Register(env.ctx, &dto.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: "Ana",
		LastName:  "Lopez",
	})
	require.NoError(t, err)
	return resp
}

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)

	resp := registerUser(t, env, "  Ana@Example.COM ", "secret123")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "en", resp.User.Locale)
	assert.True(t, resp.User.IsActive)
	assert.False(t, resp.User.IsSeller)

	stored, err := env.users.GetByEmail(env.ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password, "密码必须哈希存储")

	tests := []struct {
		name  string
		email string
	}{
		{"相同邮箱", "ana@example.com"},
		{"大小写不同", "ANA@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.userSvc.Register(env.ctx, &dto.RegisterRequest{Email: tt.email, Password: "another1"})
			assert.ErrorIs(t, err, ErrEmailExists)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	env := newTestEnv(t)
	registered := registerUser(t, env, "ana@example.com", "secret123")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"登录成功", "ANA@example.com", "secret123", nil},
		{"密码错误", "ana@example.com", "wrong-pass", ErrInvalidCredentials},
		{"用户不存在", "nobody@example.com", "secret123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.userSvc.Login(env.ctx, &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.User.ID, resp.User.ID)

			claims, err := middleware.ParseToken(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, registered.User.ID, claims.UserID)
			assert.False(t, claims.IsRefresh())
		})
	}

	t.Run("停用账号不能登录", func(t *testing.T) {
		require.NoError(t, env.users.UpdateFields(env.ctx, registered.User.ID, map[string]interface{}{"is_active": false}))
		_, err := env.userSvc.Login(env.ctx, &dto.LoginRequest{Email: "ana@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, ErrUserDisabled)
	})
}

func TestUserService_RefreshToken_Rotation(t *testing.T) {
	env := newTestEnv(t)
	registered := registerUser(t, env, "ana@example.com", "secret123")

	// Access Token 不能用于刷新
	_, err := env.userSvc.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: registered.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	rotated, err := env.userSvc.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	// 旧 Refresh Token 已作废
	_, err = env.userSvc.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.userSvc.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken})
	require.NoError(t, err)

	_, err = env.userSvc.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_Profile(t *testing.T) {
	env := newTestEnv(t)
	registered := registerUser(t, env, "ana@example.com", "secret123")
	id := registered.User.ID

	_, err := env.userSvc.UpdateProfile(env.ctx, id, &dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	phone := "+54 11 5555 0000"
	updated, err := env.userSvc.UpdateProfile(env.ctx, id, &dto.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Ana", updated.FirstName)

	public, err := env.userSvc.GetPublicUser(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lopez", public.LastName)

	_, err = env.userSvc.GetPublicUser(env.ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	registered := registerUser(t, env, "ana@example.com", "secret123")
	id := registered.User.ID

	err := env.userSvc.ChangePassword(env.ctx, id, &dto.ChangePasswordRequest{OldPassword: "wrong-old", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrInvalidOldPassword)

	require.NoError(t, env.userSvc.ChangePassword(env.ctx, id, &dto.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newsecret"}))

	_, err = env.userSvc.Login(env.ctx, &dto.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.userSvc.Login(env.ctx, &dto.LoginRequest{Email: "ana@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestUserService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	registered := registerUser(t, env, "ana@example.com", "secret123")
	id := registered.User.ID

	claims, err := middleware.ParseToken(registered.AccessToken)
	require.NoError(t, err)
	require.NoError(t, env.userSvc.DeleteAccount(env.ctx, id, claims))

	_, err = middleware.ParseToken(registered.AccessToken)
	assert.Error(t, err, "当前 Token 已注销")

	_, err = env.userSvc.GetProfile(env.ctx, id)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.userSvc.Login(env.ctx, &dto.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserDisabled)

	user, err := env.userSvc.LoadActiveUser(env.ctx, id)
	require.NoError(t, err)
	assert.Nil(t, user)

	// 邮箱不可复用
	_, err = env.userSvc.Register(env.ctx, &dto.RegisterRequest{Email: "ana@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailExists)
}
