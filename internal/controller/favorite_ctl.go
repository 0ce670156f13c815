package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// ==================== 收藏 ====================

type FavoriteController struct {
	favoriteService *service.FavoriteService
}

func NewFavoriteController(favoriteService *service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

// ToggleFavorite 切换收藏
// @Summary 收藏 / 取消收藏
// @Tags Favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProductIDRequest true "商品"
// @Success 200 {object} map[string]interface{}
// @Router /api/favorites/toggle [post]
func (ctrl *FavoriteController) ToggleFavorite(c *gin.Context) {
	var req dto.ProductIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	isFavorite, err := ctrl.favoriteService.Toggle(c.Request.Context(), middleware.GetUserID(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", gin.H{"is_favorite": isFavorite})
}

// ListFavorites 收藏列表
// @Summary 我的收藏
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/favorites [get]
func (ctrl *FavoriteController) ListFavorites(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.favoriteService.List(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// ==================== 点赞 ====================

type LikeController struct {
	likeService *service.LikeService
}

func NewLikeController(likeService *service.LikeService) *LikeController {
	return &LikeController{likeService: likeService}
}

// ListMyLikes 我点赞的商品
// @Summary 我点赞的商品
// @Tags Likes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/likes/user/me [get]
func (ctrl *LikeController) ListMyLikes(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.likeService.ListMine(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// CheckLike 是否已点赞
// @Summary 是否已点赞
// @Tags Likes
// @Security BearerAuth
// @Param productId path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/likes/check/{productId} [get]
func (ctrl *LikeController) CheckLike(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	liked, err := ctrl.likeService.Check(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", gin.H{"liked": liked})
}

// LikeProduct 点赞
// @Summary 点赞商品
// @Tags Likes
// @Accept json
// @Security BearerAuth
// @Param request body dto.ProductIDRequest true "商品"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/likes [post]
func (ctrl *LikeController) LikeProduct(c *gin.Context) {
	var req dto.ProductIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.likeService.Like(c.Request.Context(), middleware.GetUserID(c), req.ProductID); err != nil {
		respondError(c, err)
		return
	}
	created(c, "点赞成功", gin.H{"liked": true})
}

// UnlikeProduct 取消点赞
// @Summary 取消点赞
// @Tags Likes
// @Security BearerAuth
// @Param productId path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/likes/{productId} [delete]
func (ctrl *LikeController) UnlikeProduct(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	if err := ctrl.likeService.Unlike(c.Request.Context(), middleware.GetUserID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "已取消点赞"})
}

// ToggleLike 切换点赞
// @Summary 点赞 / 取消点赞
// @Tags Likes
// @Security BearerAuth
// @Param productId path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/likes/toggle/{productId} [post]
func (ctrl *LikeController) ToggleLike(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	liked, err := ctrl.likeService.Toggle(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", gin.H{"liked": liked})
}

// CountLikes 点赞数
// @Summary 商品点赞数
// @Tags Likes
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/likes/product/{id}/count [get]
func (ctrl *LikeController) CountLikes(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	count, err := ctrl.likeService.Count(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", gin.H{"likes_count": count})
}

// ListLikeUsers 点赞用户
// @Summary 点赞该商品的用户
// @Tags Likes
// @Param id path int true "商品ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/likes/product/{id}/users [get]
func (ctrl *LikeController) ListLikeUsers(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.likeService.Users(c.Request.Context(), productID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}
