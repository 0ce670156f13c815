package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// ReviewController 商品评价
type ReviewController struct {
	reviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// ListReviews 商品评价列表
// @Summary 商品评价列表
// @Tags Reviews
// @Produce json
// @Param product_id query int true "商品ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量(1-50)" default(10)
// @Success 200 {object} dto.ProductReviews
// @Failure 404 {object} map[string]interface{}
// @Router /api/reviews [get]
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	var q dto.ReviewListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	ctrl.listByProduct(c, &q)
}

// ListProductReviews 同 ListReviews，商品 ID 取自路径
// @Summary 商品评价列表
// @Tags Reviews
// @Produce json
// @Param productId path int true "商品ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量(1-50)" default(10)
// @Success 200 {object} dto.ProductReviews
// @Router /api/reviews/product/{productId} [get]
func (ctrl *ReviewController) ListProductReviews(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}
	ctrl.listByProduct(c, &dto.ReviewListQuery{PageQuery: page, ProductID: productID})
}

func (ctrl *ReviewController) listByProduct(c *gin.Context, q *dto.ReviewListQuery) {
	result, err := ctrl.reviewService.ListByProduct(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// ListMyReviews 我的评价
// @Summary 当前用户的评价
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ReviewInfo
// @Router /api/reviews/user/me [get]
func (ctrl *ReviewController) ListMyReviews(c *gin.Context) {
	list, err := ctrl.reviewService.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", list)
}

// GetReview 评价详情
// @Summary 评价详情
// @Tags Reviews
// @Produce json
// @Param id path int true "评价ID"
// @Success 200 {object} dto.ReviewInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/reviews/{id} [get]
func (ctrl *ReviewController) GetReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	review, err := ctrl.reviewService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", review)
}

// CreateReview 发表评价
// @Summary 发表评价
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateReviewRequest true "评价内容"
// @Success 201 {object} dto.ReviewInfo
// @Failure 409 {object} map[string]interface{}
// @Router /api/reviews [post]
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := ctrl.reviewService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "评价成功", review)
}

// UpdateReview 修改评价
// @Summary 修改评价（仅作者）
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评价ID"
// @Param request body dto.UpdateReviewRequest true "需要修改的字段"
// @Success 200 {object} dto.ReviewInfo
// @Router /api/reviews/{id} [put]
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := ctrl.reviewService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "更新成功", review)
}

// DeleteReview 删除评价
// @Summary 删除评价（仅作者）
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "评价ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/reviews/{id} [delete]
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reviewService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "评价已删除"})
}
