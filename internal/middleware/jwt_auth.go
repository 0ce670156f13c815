package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"marketplace_api/internal/model"
	"marketplace_api/pkg/utils"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey       string        // 签名密钥
	AccessTokenTTL  time.Duration // Access Token 有效期
	RefreshTokenTTL time.Duration // Refresh Token 有效期
	Issuer          string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:       "marketplace-secret-key-change-in-production",
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "marketplace-api",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// GetJWTConfig 获取 JWT 配置
func GetJWTConfig() *JWTConfig {
	return jwtConfig
}

// ==================== Claims 定义 ====================

const (
	tokenSubjectAccess  = "access"
	tokenSubjectRefresh = "refresh"
)

// UserClaims 用户声明，RegisteredClaims.ID 为 jti，用于注销
type UserClaims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	IsSeller bool   `json:"is_seller"`
	jwt.RegisteredClaims
}

// IsRefresh 是否为 Refresh Token
func (c *UserClaims) IsRefresh() bool {
	return c.Subject == tokenSubjectRefresh
}

// ==================== Token 生成 ====================

func generateToken(userID int64, email string, isSeller bool, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID:   userID,
		Email:    email,
		IsSeller: isSeller,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    jwtConfig.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// GenerateTokenPair 生成 Token 对
func GenerateTokenPair(userID int64, email string, isSeller bool) (accessToken, refreshToken string, err error) {
	accessToken, err = generateToken(userID, email, isSeller, tokenSubjectAccess, jwtConfig.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = generateToken(userID, email, isSeller, tokenSubjectRefresh, jwtConfig.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ==================== Token 解析 ====================

// ParseToken 解析 Token，已注销的 Token 视为无效
func ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID != "" && revokedTokens.Has(claims.ID) {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

// ==================== Token 注销 ====================

// revokedTokens 已注销 Token 的 jti，保留到 Token 自然过期
var revokedTokens = utils.NewTTLCache()

// RevokeToken 注销 Token
func RevokeToken(claims *UserClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expiresAt := time.Now().Add(jwtConfig.AccessTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	revokedTokens.Set(claims.ID, "revoked", expiresAt)
}

// PurgeRevokedTokens 清理已过期的注销记录
func PurgeRevokedTokens() int {
	return revokedTokens.Purge()
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
	ContextKeyClaims = "claims"
)

// UserLoader 按 ID 加载启用且未删除的用户，不存在时返回 nil
type UserLoader func(ctx context.Context, id int64) (*model.User, error)

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    401,
		"message": message,
	})
	c.Abort()
}

// bearerToken 从 Authorization 头中取出 Token
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// JWTAuth JWT 认证中间件，并确认用户仍处于可用状态
func JWTAuth(loadUser UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, "未提供认证信息")
			return
		}

		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "认证格式错误，应为 Bearer {token}")
			return
		}

		claims, err := ParseToken(raw)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}
		if claims.Subject != tokenSubjectAccess {
			abortUnauthorized(c, "Token 类型错误")
			return
		}

		user, err := loadUser(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": "服务器内部错误",
			})
			c.Abort()
			return
		}
		if user == nil {
			abortUnauthorized(c, "账号不存在或已停用")
			return
		}

		setIdentity(c, user, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件（不强制登录），Token 无效时按匿名处理
func OptionalAuth(loadUser UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := ParseToken(raw)
		if err != nil || claims.Subject != tokenSubjectAccess {
			c.Next()
			return
		}

		if user, err := loadUser(c.Request.Context(), claims.UserID); err == nil && user != nil {
			setIdentity(c, user, claims)
		}
		c.Next()
	}
}

// RequireSeller 卖家权限校验，需在 JWTAuth 之后使用
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "未获取到用户信息")
			return
		}
		if !user.IsSeller {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "仅卖家可访问",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, user *model.User, claims *UserClaims) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyClaims, claims)
}

// ==================== 辅助函数 ====================

// GetUserID 从 Context 获取用户 ID，未登录为 0
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyUserID); exists {
		return id.(int64)
	}
	return 0
}

// GetCurrentUser 从 Context 获取当前用户
func GetCurrentUser(c *gin.Context) *model.User {
	if user, exists := c.Get(ContextKeyUser); exists {
		return user.(*model.User)
	}
	return nil
}

// GetUserClaims 从 Context 获取完整 Claims
func GetUserClaims(c *gin.Context) *UserClaims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		return claims.(*UserClaims)
	}
	return nil
}
