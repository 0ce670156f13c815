package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// errorStatus 业务错误到 HTTP 状态码的映射
var errorStatus = map[error]int{
	// 400
	service.ErrNoFieldsToUpdate:     http.StatusBadRequest,
	service.ErrInvalidOldPassword:   http.StatusBadRequest,
	service.ErrInvalidPrice:         http.StatusBadRequest,
	service.ErrProductUnavailable:   http.StatusBadRequest,
	service.ErrCartEmpty:            http.StatusBadRequest,
	service.ErrOwnProduct:           http.StatusBadRequest,
	service.ErrOutOfStock:           http.StatusBadRequest,
	service.ErrInvalidStatus:        http.StatusBadRequest,
	service.ErrInvalidTransition:    http.StatusBadRequest,
	service.ErrInvoiceRequired:      http.StatusBadRequest,
	service.ErrSaleNotCancellable:   http.StatusBadRequest,
	service.ErrEmptyFile:            http.StatusBadRequest,
	service.ErrImageTooLarge:        http.StatusBadRequest,
	service.ErrNotImage:             http.StatusBadRequest,
	service.ErrTooManyFiles:         http.StatusBadRequest,
	service.ErrUnsupportedImageType: http.StatusBadRequest,
	service.ErrImportFailed:         http.StatusBadRequest,

	// 401
	service.ErrInvalidCredentials: http.StatusUnauthorized,
	service.ErrUserDisabled:       http.StatusUnauthorized,
	service.ErrInvalidToken:       http.StatusUnauthorized,
	service.ErrLoginRequired:      http.StatusUnauthorized,

	// 403
	service.ErrNotSeller:          http.StatusForbidden,
	service.ErrProductForbidden:   http.StatusForbidden,
	service.ErrStoreForbidden:     http.StatusForbidden,
	service.ErrSaleForbidden:      http.StatusForbidden,
	service.ErrReviewNotPurchased: http.StatusForbidden,
	service.ErrImageForbidden:     http.StatusForbidden,

	// 404
	service.ErrUserNotFound:         http.StatusNotFound,
	service.ErrProductNotFound:      http.StatusNotFound,
	service.ErrStoreNotFound:        http.StatusNotFound,
	service.ErrSaleNotFound:         http.StatusNotFound,
	service.ErrReviewNotFound:       http.StatusNotFound,
	service.ErrNotificationNotFound: http.StatusNotFound,
	service.ErrImageNotFound:        http.StatusNotFound,
	service.ErrNotLiked:             http.StatusNotFound,

	// 409
	service.ErrEmailExists:    http.StatusConflict,
	service.ErrStoreExists:    http.StatusConflict,
	service.ErrReviewExists:   http.StatusConflict,
	service.ErrAlreadyLiked:   http.StatusConflict,
	service.ErrStatusConflict: http.StatusConflict,

	// 外部依赖
	service.ErrUploadFailed:      http.StatusBadGateway,
	service.ErrSubscribeFailed:   http.StatusBadGateway,
	service.ErrNotifyUnavailable: http.StatusServiceUnavailable,
}

// respondError 已知业务错误按映射返回，其余统一 500
func respondError(c *gin.Context, err error) {
	for target, status := range errorStatus {
		if errors.Is(err, target) {
			c.JSON(status, gin.H{
				"code":    status,
				"message": err.Error(),
			})
			return
		}
	}

	zap.L().Error("unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int64("user_id", middleware.GetUserID(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    500,
		"message": "服务器内部错误",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": "参数错误: " + err.Error(),
	})
}

func success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

func created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

// parseID 解析路径中的正整数 ID，失败时直接写 400
func parseID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的 " + key,
		})
		return 0, false
	}
	return id, true
}
