package controller

import (
	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// ==================== SaleController 订单控制器 ====================

// SaleController 买家订单与卖家订单视图
type SaleController struct {
	saleService *service.SaleService
}

// NewSaleController 创建订单控制器
func NewSaleController(saleService *service.SaleService) *SaleController {
	return &SaleController{saleService: saleService}
}

// ==================== 买家 ====================

// Checkout 下单
// @Summary 下单
// @Description products 为空时使用购物车结算，成功后清空购物车
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CheckoutRequest true "下单信息"
// @Success 201 {object} dto.CheckoutResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/sales [post]
func (ctrl *SaleController) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.saleService.Checkout(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "下单成功", resp)
}

// ListSales 我的订单
// @Summary 买家订单列表
// @Tags Sales
// @Produce json
// @Security BearerAuth
// @Param status query string false "订单状态"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/sales [get]
func (ctrl *SaleController) ListSales(c *gin.Context) {
	var q dto.SaleListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.saleService.List(c.Request.Context(), middleware.GetUserID(c), &q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// GetSale 订单详情
// @Summary 订单详情（买家或相关卖家）
// @Tags Sales
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} dto.SaleInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/sales/{id} [get]
func (ctrl *SaleController) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sale, err := ctrl.saleService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", sale)
}

// UpdateStatus 修改订单状态
// @Summary 订单状态流转
// @Description 买家: cancelled / paid(需 invoice_id) / received；卖家: confirmed / rejected / preparing / shipped / delivered
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body dto.UpdateSaleStatusRequest true "目标状态"
// @Success 200 {object} dto.SaleInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/sales/{id}/status [patch]
func (ctrl *SaleController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sale, err := ctrl.saleService.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "状态已更新", sale)
}

// CancelSale 取消订单
// @Summary 买家取消订单（仅待确认）
// @Tags Sales
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} dto.SaleInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/sales/{id}/cancel [post]
func (ctrl *SaleController) CancelSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sale, err := ctrl.saleService.Cancel(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "订单已取消", sale)
}

// ==================== 卖家 ====================

// ListMySales 卖家订单
// @Summary 卖家订单列表（只含本人商品的订单行）
// @Tags MySales
// @Produce json
// @Security BearerAuth
// @Param status query string false "订单状态"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/my-sales [get]
func (ctrl *SaleController) ListMySales(c *gin.Context) {
	var q dto.SaleListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.saleService.ListSeller(c.Request.Context(), middleware.GetUserID(c), &q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// GetMySalesSummary 卖家销售汇总
// @Summary 卖家销售汇总
// @Tags MySales
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SellerSalesSummary
// @Router /api/my-sales/summary [get]
func (ctrl *SaleController) GetMySalesSummary(c *gin.Context) {
	summary, err := ctrl.saleService.Summary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", summary)
}
