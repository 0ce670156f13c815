package controller

import (
	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// StoreController 店铺
type StoreController struct {
	storeService *service.StoreService
}

func NewStoreController(storeService *service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

// ListStores 店铺列表
// @Summary 店铺列表
// @Tags Stores
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/stores [get]
func (ctrl *StoreController) ListStores(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.storeService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// CreateStore 开店
// @Summary 创建店铺，当前用户成为卖家
// @Tags Stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStoreRequest true "店铺信息"
// @Success 201 {object} dto.StoreInfo
// @Failure 409 {object} map[string]interface{}
// @Router /api/stores [post]
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	store, err := ctrl.storeService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "店铺创建成功", store)
}

// GetStore 店铺详情
// @Summary 店铺详情
// @Tags Stores
// @Produce json
// @Param id path int true "店铺ID"
// @Success 200 {object} dto.StoreInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/stores/{id} [get]
func (ctrl *StoreController) GetStore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	store, err := ctrl.storeService.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", store)
}

// GetStoreProducts 店铺商品
// @Summary 店铺商品列表
// @Tags Stores
// @Produce json
// @Param id path int true "店铺ID"
// @Param category query string false "分类"
// @Param search query string false "关键字"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/stores/{id}/products [get]
func (ctrl *StoreController) GetStoreProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.storeService.Products(c.Request.Context(), id, &q, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// UpdateStore 修改店铺
// @Summary 修改店铺（仅店主）
// @Tags Stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺ID"
// @Param request body dto.UpdateStoreRequest true "需要修改的字段"
// @Success 200 {object} dto.StoreInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/stores/{id} [put]
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	store, err := ctrl.storeService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "更新成功", store)
}
