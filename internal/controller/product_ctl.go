package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== 查询接口 ====================

// GetProducts 获取商品列表
// @Summary 商品列表
// @Description 仅返回未删除、未下架的商品；liked=true 需登录，只返回已收藏商品
// @Tags Products
// @Produce json
// @Param category query string false "分类"
// @Param search query string false "名称/描述关键字"
// @Param seller_id query int false "卖家ID"
// @Param liked query bool false "只看收藏"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.productService.List(c.Request.Context(), &q, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// GetProduct 获取商品详情
// @Summary 商品详情
// @Tags Products
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", product)
}

// ==================== 卖家操作 ====================

// CreateProduct 发布商品
// @Summary 发布商品（仅卖家）
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductReq true "商品信息"
// @Success 201 {object} dto.ProductInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req dto.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), middleware.GetCurrentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "商品创建成功", product)
}

// UpdateProduct 修改商品
// @Summary 修改商品（仅所有者）
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.UpdateProductReq true "需要修改的字段"
// @Success 200 {object} dto.ProductInfo
// @Router /api/products/{id} [put]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "更新成功", product)
}

// DeleteProduct 删除商品（软删除）
// @Summary 删除商品
// @Tags Products
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "商品已删除"})
}
