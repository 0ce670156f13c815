package dto

import "time"

// ==================== 注册 / 登录 ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=50"`
	FirstName string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Locale    string `json:"locale" binding:"omitempty,max=10"`
	Address   string `json:"address" binding:"omitempty,max=500"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1,max=100"`
}

// LoginResponse 登录/注册响应
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *UserInfo `json:"user"`
}

// ==================== Token 刷新 ====================

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ==================== 用户信息 ====================

// UserInfo 用户本人可见的完整信息
type UserInfo struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Locale    string    `json:"locale"`
	Address   string    `json:"address"`
	IsSeller  bool      `json:"is_seller"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser 对外公开的用户信息
type PublicUser struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsSeller  bool      `json:"is_seller"`
	CreatedAt time.Time `json:"created_at"`
}

// ==================== 资料更新 ====================

// UpdateProfileRequest 资料部分更新，nil 字段不修改
type UpdateProfileRequest struct {
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	IsSeller  *bool   `json:"is_seller"`
	IsActive  *bool   `json:"is_active"`
	Locale    *string `json:"locale" binding:"omitempty,max=10"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
}

// Columns 转为列更新映射
func (r *UpdateProfileRequest) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if r.Phone != nil {
		cols["phone"] = *r.Phone
	}
	if r.FirstName != nil {
		cols["first_name"] = *r.FirstName
	}
	if r.LastName != nil {
		cols["last_name"] = *r.LastName
	}
	if r.IsSeller != nil {
		cols["is_seller"] = *r.IsSeller
	}
	if r.IsActive != nil {
		cols["is_active"] = *r.IsActive
	}
	if r.Locale != nil {
		cols["locale"] = *r.Locale
	}
	if r.Address != nil {
		cols["address"] = *r.Address
	}
	return cols
}

// ==================== 密码修改 ====================

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required,min=6"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=100"`
}
