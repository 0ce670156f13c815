package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// ImageController 图片上传
type ImageController struct {
	imageService *service.ImageService
}

func NewImageController(imageService *service.ImageService) *ImageController {
	return &ImageController{imageService: imageService}
}

// Upload 单图上传
// @Summary 上传图片
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "图片文件 (<=5MB)"
// @Param folder query string false "目录" default(products)
// @Success 201 {object} dto.UploadResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/images/upload [post]
func (ctrl *ImageController) Upload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, errors.New("缺少文件字段 image"))
		return
	}
	maxSize, _ := ctrl.imageService.Limits()
	file, err := readFormFile(header, maxSize)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := ctrl.imageService.Upload(c.Request.Context(), middleware.GetUserID(c), file, c.Query("folder"))
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "上传成功", result)
}

// UploadMultiple 批量上传
// @Summary 批量上传图片
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param images formData file true "图片文件，最多 10 个"
// @Param folder query string false "目录" default(products)
// @Success 201 {object} dto.MultiUploadResult
// @Router /api/images/upload-multiple [post]
func (ctrl *ImageController) UploadMultiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		badRequest(c, errors.New("缺少文件字段 images"))
		return
	}

	maxSize, maxFiles := ctrl.imageService.Limits()
	if maxFiles > 0 && len(headers) > maxFiles {
		respondError(c, fmt.Errorf("%w: 最多 %d 个", service.ErrTooManyFiles, maxFiles))
		return
	}

	// 超限文件不读取，直接计入失败列表
	files := make([]service.ImageFile, 0, len(headers))
	var oversized []string
	for _, header := range headers {
		file, err := readFormFile(header, maxSize)
		if errors.Is(err, service.ErrImageTooLarge) {
			oversized = append(oversized, header.Filename)
			continue
		}
		if err != nil {
			respondError(c, err)
			return
		}
		files = append(files, file)
	}

	result := &dto.MultiUploadResult{Images: []dto.UploadResult{}, Failed: []string{}}
	if len(files) > 0 {
		result, err = ctrl.imageService.UploadMultiple(c.Request.Context(), middleware.GetUserID(c), files, c.Query("folder"))
		if err != nil {
			respondError(c, err)
			return
		}
	}
	result.Failed = append(result.Failed, oversized...)
	created(c, "上传完成", result)
}

// Import 远程导入
// @Summary 从 URL 导入图片
// @Tags Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ImportImageRequest true "图片地址"
// @Success 201 {object} dto.UploadResult
// @Router /api/images/import [post]
func (ctrl *ImageController) Import(c *gin.Context) {
	var req dto.ImportImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.imageService.Import(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "导入成功", result)
}

// PresignedURL 直传 URL
// @Summary 获取直传预签名 URL
// @Tags Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PresignRequest true "文件信息"
// @Success 200 {object} dto.PresignResponse
// @Router /api/images/presigned-url [post]
func (ctrl *ImageController) PresignedURL(c *gin.Context) {
	var req dto.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.imageService.Presign(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", resp)
}

// GetImage 图片信息
// @Summary 图片元数据
// @Tags Images
// @Param id path int true "图片ID"
// @Success 200 {object} dto.ImageInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/images/{id} [get]
func (ctrl *ImageController) GetImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	image, err := ctrl.imageService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", image)
}

// DeleteImage 删除图片
// @Summary 删除图片（仅上传者）
// @Tags Images
// @Security BearerAuth
// @Param id path int true "图片ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/images/{id} [delete]
func (ctrl *ImageController) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.imageService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "图片已删除"})
}

// ListFolder 目录下的图片
// @Summary 按目录列出图片
// @Tags Images
// @Param folder path string true "目录"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/images/folder/{folder} [get]
func (ctrl *ImageController) ListFolder(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.imageService.ListByFolder(c.Request.Context(), c.Param("folder"), q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// readFormFile 读取表单文件内容，超过 maxSize 时不读取直接拒绝
func readFormFile(header *multipart.FileHeader, maxSize int64) (service.ImageFile, error) {
	if maxSize > 0 && header.Size > maxSize {
		return service.ImageFile{}, fmt.Errorf("%w: %s 最大 %dMB", service.ErrImageTooLarge, header.Filename, maxSize>>20)
	}
	f, err := header.Open()
	if err != nil {
		return service.ImageFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.ImageFile{}, err
	}
	return service.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
