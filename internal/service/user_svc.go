package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// ==================== UserService 用户服务 ====================

// UserService 用户服务
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ==================== 认证相关 ====================

// Register 注册，成功后直接签发 Token
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	locale := req.Locale
	if locale == "" {
		locale = "en"
	}

	user := &model.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Locale:    locale,
		Address:   req.Address,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册同一邮箱
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 检查状态
	if !user.CanLogin() {
		return nil, ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshToken 刷新 Token，旧的 Refresh Token 随即作废
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !claims.IsRefresh() {
		return nil, ErrInvalidToken
	}

	// 确保用户仍然有效
	user, err := s.userRepo.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserDisabled
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	middleware.RevokeToken(claims)

	return &dto.RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	}, nil
}

// Logout 注销当前 Access Token
func (s *UserService) Logout(claims *middleware.UserClaims) {
	middleware.RevokeToken(claims)
}

// LoadActiveUser 供认证中间件加载当前用户
func (s *UserService) LoadActiveUser(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetActiveByID(ctx, id)
}

// ==================== 个人资料 ====================

// GetProfile 获取当前用户信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Deleted {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// UpdateProfile 部分更新资料
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	fields := req.Columns()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// ChangePassword 修改密码
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	// 验证旧密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// DeleteAccount 注销账号（软删除），并作废当前 Token
func (s *UserService) DeleteAccount(ctx context.Context, userID int64, claims *middleware.UserClaims) error {
	if err := s.userRepo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	middleware.RevokeToken(claims)
	return nil
}

// GetPublicUser 公开用户信息，已停用或注销视为不存在
func (s *UserService) GetPublicUser(ctx context.Context, userID int64) (*dto.PublicUser, error) {
	user, err := s.userRepo.GetActiveByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toPublicUser(user), nil
}

// ==================== 辅助方法 ====================

func (s *UserService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email, user.IsSeller)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         toUserInfo(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// toUserInfo 转换为 DTO
func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		Phone:     user.Phone,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Locale:    user.Locale,
		Address:   user.Address,
		IsSeller:  user.IsSeller,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toPublicUser(user *model.User) *dto.PublicUser {
	return &dto.PublicUser{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsSeller:  user.IsSeller,
		CreatedAt: user.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已停用或已注销")
	ErrInvalidToken       = errors.New("Token 无效")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidOldPassword = errors.New("旧密码错误")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrNoFieldsToUpdate   = errors.New("没有需要更新的字段")
	ErrLoginRequired      = errors.New("请先登录")
)
