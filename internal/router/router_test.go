package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace_api/internal/config"
	"marketplace_api/internal/controller"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
	"marketplace_api/internal/service"
)

// ==================== 测试环境 ====================

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, limiter *middleware.IPRateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	users := repository.NewUserRepository(db)
	stores := repository.NewStoreRepository(db)
	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	sales := repository.NewSaleRepository(db)
	reviews := repository.NewReviewRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	likes := repository.NewLikeRepository(db)
	uow := repository.NewUnitOfWork(db)

	storage, err := service.NewStorageService(config.StorageConfig{
		Provider:      "local",
		BasePath:      t.TempDir(),
		Endpoint:      "http://localhost/uploads",
		MaxUploadSize: 1 << 10,
		MaxFiles:      2,
	})
	require.NoError(t, err)

	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db), nil)
	userSvc := service.NewUserService(users)
	productSvc := service.NewProductService(products, stores, reviews, favorites)

	ctl := &Controllers{
		Health:       controller.NewHealthController(db),
		User:         controller.NewUserController(userSvc),
		Store:        controller.NewStoreController(service.NewStoreService(stores, uow, productSvc)),
		Product:      controller.NewProductController(productSvc),
		Cart:         controller.NewCartController(service.NewCartService(carts, products, uow, reviews, favorites, stores)),
		Sale:         controller.NewSaleController(service.NewSaleService(uow, sales, carts, notificationSvc)),
		Review:       controller.NewReviewController(service.NewReviewService(reviews, products, sales, notificationSvc, false)),
		Favorite:     controller.NewFavoriteController(service.NewFavoriteService(favorites, products, reviews, stores)),
		Like:         controller.NewLikeController(service.NewLikeService(likes, products, reviews, favorites, stores)),
		Notification: controller.NewNotificationController(notificationSvc),
		Image:        controller.NewImageController(service.NewImageService(repository.NewImageRepository(db), storage, nil)),
	}

	r := NewEngine()
	InitRoutes(r, ctl, Options{
		LoadUser:    userSvc.LoadActiveUser,
		AuthLimiter: limiter,
	})
	return &testServer{t: t, engine: r}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, apiResponse) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

// register 注册并返回 access token
func (s *testServer) register(email string) string {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/api/users/register", "", gin.H{
		"email":      email,
		"password":   "secret123",
		"first_name": "Ana",
	})
	require.Equal(s.t, http.StatusCreated, code, resp.Message)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(resp.Data, &login))
	return login.AccessToken
}

// upload 以 multipart 表单上传文件，files 为 文件名 -> 内容
func (s *testServer) upload(path, token, field string, names []string, files map[string][]byte) (int, apiResponse) {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(s.t, err)
		_, err = fw.Write(files[name])
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func decodeID(t *testing.T, data json.RawMessage) int64 {
	t.Helper()
	var v struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &v))
	require.NotZero(t, v.ID)
	return v.ID
}

// ==================== 基础路由 ====================

func TestBasicRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp := s.do(http.MethodGet, "/no/such/route", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", resp.Message)

	code, _ = s.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// ==================== 用户 ====================

func TestUserFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("ana@example.com")

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"重复邮箱", gin.H{"email": "ANA@example.com", "password": "secret123"}, http.StatusConflict},
		{"邮箱格式错误", gin.H{"email": "nope", "password": "secret123"}, http.StatusBadRequest},
		{"密码过短", gin.H{"email": "b@example.com", "password": "123"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(http.MethodPost, "/api/users/register", "", tt.body)
			assert.Equal(t, tt.want, code)
		})
	}

	code, _ := s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := s.do(http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"email":"ana@example.com"`)

	code, _ = s.do(http.MethodPost, "/api/users/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/users/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "注销后 Token 失效")
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewIPRateLimiter(0.001, 2))

	body := gin.H{"email": "ghost@example.com", "password": "secret123"}
	var codes []int
	for i := 0; i < 3; i++ {
		code, _ := s.do(http.MethodPost, "/api/users/login", "", body)
		codes = append(codes, code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

// ==================== 下单流程 ====================

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t, nil)
	seller := s.register("seller@example.com")
	buyer := s.register("buyer@example.com")

	// 非卖家不能上架
	code, _ := s.do(http.MethodPost, "/api/products", buyer, gin.H{"name": "Mug", "price": 10, "stock": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(http.MethodPost, "/api/stores", seller, gin.H{"store_name": "Kiln Works"})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, resp = s.do(http.MethodPost, "/api/products", seller, gin.H{
		"name": "Ceramic Mug", "price": 29.99, "stock": 5, "category": "ceramics",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	productID := decodeID(t, resp.Data)

	code, _ = s.do(http.MethodGet, "/api/my-sales", buyer, nil)
	assert.Equal(t, http.StatusForbidden, code, "买家无卖家视图")

	// 加购并下单
	code, resp = s.do(http.MethodPut, "/api/cart", buyer, gin.H{
		"items": []gin.H{{"product_id": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = s.do(http.MethodPost, "/api/sales", buyer, gin.H{"address": "Rua A, 1"})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var checkout struct {
		Sale struct {
			ID          int64   `json:"id"`
			Status      string  `json:"status"`
			TotalAmount float64 `json:"total_amount"`
		} `json:"sale"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &checkout))
	assert.Equal(t, model.SaleStatusPending, checkout.Sale.Status)
	assert.InDelta(t, 59.98, checkout.Sale.TotalAmount, 0.001)

	code, _ = s.do(http.MethodPost, "/api/sales", buyer, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code, "购物车已清空")

	statusPath := fmt.Sprintf("/api/sales/%d/status", checkout.Sale.ID)
	steps := []struct {
		name   string
		token  string
		status string
		want   int
	}{
		{"买家不能确认", buyer, model.SaleStatusConfirmed, http.StatusForbidden},
		{"非法状态值", seller, "lost", http.StatusBadRequest},
		{"卖家确认", seller, model.SaleStatusConfirmed, http.StatusOK},
		{"付款缺少发票", buyer, model.SaleStatusPaid, http.StatusBadRequest},
		{"卖家备货", seller, model.SaleStatusPreparing, http.StatusOK},
		{"卖家发货", seller, model.SaleStatusShipped, http.StatusOK},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			code, resp := s.do(http.MethodPatch, statusPath, step.token, gin.H{"status": step.status})
			assert.Equal(t, step.want, code, resp.Message)
		})
	}

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/sales/%d/cancel", checkout.Sale.ID), buyer, nil)
	assert.Equal(t, http.StatusBadRequest, code, "已发货订单不可取消")

	code, resp = s.do(http.MethodGet, "/api/my-sales/summary", seller, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"units_sold":2`)

	code, resp = s.do(http.MethodGet, "/api/notifications/unread-count", seller, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1}`, string(resp.Data))

	// 评价与点赞
	code, _ = s.do(http.MethodPost, "/api/reviews", buyer, gin.H{"product_id": productID, "rating": 5})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/reviews", buyer, gin.H{"product_id": productID, "rating": 4})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/likes", buyer, gin.H{"product_id": productID})
	assert.Equal(t, http.StatusCreated, code)
	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/likes/product/%d/count", productID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"likes_count":1}`, string(resp.Data))
}

func TestSubscribeUnavailable(t *testing.T) {
	s := newTestServer(t, nil)
	code, _ := s.do(http.MethodPost, "/api/notifications/subscribe", "", gin.H{"email": "a@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

// ==================== 图片上传 ====================

func TestImageUploadLimits(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("uploader@example.com")

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	big := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 2<<10)...)
	files := map[string][]byte{"a.png": png, "b.png": png, "c.png": png, "big.png": big}

	tests := []struct {
		name  string
		path  string
		field string
		names []string
		want  int
	}{
		{"单图正常", "/api/images/upload", "image", []string{"a.png"}, http.StatusCreated},
		{"单图超过大小", "/api/images/upload", "image", []string{"big.png"}, http.StatusBadRequest},
		{"批量正常", "/api/images/upload-multiple", "images", []string{"a.png", "b.png"}, http.StatusCreated},
		{"批量超过数量", "/api/images/upload-multiple", "images", []string{"a.png", "b.png", "c.png"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := s.upload(tt.path, token, tt.field, tt.names, files)
			assert.Equal(t, tt.want, code, resp.Message)
		})
	}

	t.Run("批量含超大文件", func(t *testing.T) {
		code, resp := s.upload("/api/images/upload-multiple", token, "images", []string{"a.png", "big.png"}, files)
		require.Equal(t, http.StatusCreated, code, resp.Message)

		var result struct {
			Images []json.RawMessage `json:"images"`
			Failed []string          `json:"failed"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Len(t, result.Images, 1)
		assert.Equal(t, []string{"big.png"}, result.Failed)
	})

	t.Run("批量全部超大", func(t *testing.T) {
		code, resp := s.upload("/api/images/upload-multiple", token, "images", []string{"big.png"}, files)
		require.Equal(t, http.StatusCreated, code, resp.Message)
		assert.JSONEq(t, `{"images":[],"failed":["big.png"]}`, string(resp.Data))
	})
}
