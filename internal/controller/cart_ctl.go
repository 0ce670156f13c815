package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// CartController 购物车
type CartController struct {
	cartService *service.CartService
}

func NewCartController(cartService *service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart 获取购物车
// @Summary 获取购物车
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartInfo
// @Router /api/cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.cartService.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", cart)
}

// UpdateCart 整体替换购物车
// @Summary 替换购物车内容
// @Description 不可售商品会被跳过，超出库存的数量会被调整，调整记录见 adjustments
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateCartRequest true "购物车条目"
// @Success 200 {object} dto.UpdateCartResponse
// @Router /api/cart [put]
func (ctrl *CartController) UpdateCart(c *gin.Context) {
	var req dto.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.cartService.Update(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "购物车已更新", resp)
}

// ClearCart 清空购物车
// @Summary 清空购物车
// @Tags Cart
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	if err := ctrl.cartService.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "购物车已清空"})
}

// ValidateCart 结算前校验
// @Summary 校验购物车
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartValidation
// @Router /api/cart/validate [get]
func (ctrl *CartController) ValidateCart(c *gin.Context) {
	result, err := ctrl.cartService.Validate(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}
