package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// ==================== UserController 用户控制器 ====================

// UserController 用户控制器
type UserController struct {
	userService *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ==================== 认证接口 ====================

// Register 用户注册
// @Summary 用户注册
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/users/register [post]
func (c *UserController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.Register(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	created(ctx, "注册成功", resp)
}

// Login 用户登录
// @Summary 用户登录
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.Login(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	success(ctx, "登录成功", resp)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/refresh [post]
func (c *UserController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	success(ctx, "刷新成功", resp)
}

// Logout 注销当前 Token
// @Summary 退出登录
// @Tags Users
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/users/logout [post]
func (c *UserController) Logout(ctx *gin.Context) {
	c.userService.Logout(middleware.GetUserClaims(ctx))
	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已退出登录",
	})
}

// ==================== 个人资料 ====================

// GetProfile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	success(ctx, "success", user)
}

// UpdateProfile 更新资料
// @Summary 更新当前用户资料
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "需要修改的字段"
// @Success 200 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	success(ctx, "更新成功", user)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "密码信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/users/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	if err := c.userService.ChangePassword(ctx.Request.Context(), middleware.GetUserID(ctx), &req); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "密码修改成功",
	})
}

// DeleteAccount 注销账号
// @Summary 注销账号（软删除）
// @Tags Users
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/users/profile [delete]
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	err := c.userService.DeleteAccount(ctx.Request.Context(), middleware.GetUserID(ctx), middleware.GetUserClaims(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "账号已注销",
	})
}

// GetUser 公开用户信息
// @Summary 获取用户公开信息
// @Tags Users
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} dto.PublicUser
// @Failure 404 {object} map[string]interface{}
// @Router /api/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetPublicUser(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	success(ctx, "success", user)
}
