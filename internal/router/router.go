package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"marketplace_api/internal/controller"
	"marketplace_api/internal/middleware"
	"marketplace_api/pkg/metrics"

	_ "marketplace_api/docs"
)

// Controllers 全部控制器
type Controllers struct {
	Health       *controller.HealthController
	User         *controller.UserController
	Store        *controller.StoreController
	Product      *controller.ProductController
	Cart         *controller.CartController
	Sale         *controller.SaleController
	Review       *controller.ReviewController
	Favorite     *controller.FavoriteController
	Like         *controller.LikeController
	Notification *controller.NotificationController
	Image        *controller.ImageController
}

// Options 路由依赖
type Options struct {
	// LoadUser 认证中间件加载当前用户
	LoadUser middleware.UserLoader

	// AuthLimiter 注册 / 登录限流，nil 表示不限流
	AuthLimiter *middleware.IPRateLimiter

	// UploadsDir 本地存储目录，非空时以 /uploads 对外提供
	UploadsDir string

	// MaxMultipartMemory multipart 表单内存上限
	MaxMultipartMemory int64
}

// NewEngine 创建 gin 引擎并挂载全局中间件
func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.AccessLog(),
		metrics.GinMiddleware(),
	)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl *Controllers, opts Options) {
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	auth := middleware.JWTAuth(opts.LoadUser)
	optional := middleware.OptionalAuth(opts.LoadUser)
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		limit = opts.AuthLimiter.Middleware()
	}

	// 1. 基础路由
	// 访问 http://localhost:3000/swagger/index.html 查看文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/", ctl.Health.Root)
	r.GET("/health", ctl.Health.Health)
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "Route not found"})
	})

	// 2. API 路由组
	api := r.Group("/api")
	{
		// users 用户与认证
		users := api.Group("/users")
		{
			users.POST("/register", limit, ctl.User.Register)
			users.POST("/login", limit, ctl.User.Login)
			users.POST("/refresh", ctl.User.RefreshToken)
			users.POST("/logout", auth, ctl.User.Logout)
			users.GET("/profile", auth, ctl.User.GetProfile)
			users.PUT("/profile", auth, ctl.User.UpdateProfile)
			users.DELETE("/profile", auth, ctl.User.DeleteAccount)
			users.PUT("/password", auth, ctl.User.ChangePassword)
			users.GET("/:id", ctl.User.GetUser)
		}

		// stores 店铺
		stores := api.Group("/stores")
		{
			stores.GET("", ctl.Store.ListStores)
			stores.POST("", auth, ctl.Store.CreateStore)
			stores.GET("/:id", optional, ctl.Store.GetStore)
			stores.GET("/:id/products", optional, ctl.Store.GetStoreProducts)
			stores.PUT("/:id", auth, ctl.Store.UpdateStore)
		}

		// products 商品
		products := api.Group("/products")
		{
			products.GET("", optional, ctl.Product.GetProducts)
			products.GET("/:id", optional, ctl.Product.GetProduct)
			products.POST("", auth, ctl.Product.CreateProduct)
			products.PUT("/:id", auth, ctl.Product.UpdateProduct)
			products.DELETE("/:id", auth, ctl.Product.DeleteProduct)
		}

		// cart 购物车
		cart := api.Group("/cart", auth)
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.PUT("", ctl.Cart.UpdateCart)
			cart.DELETE("", ctl.Cart.ClearCart)
			cart.GET("/validate", ctl.Cart.ValidateCart)
		}

		// sales 买家订单
		sales := api.Group("/sales", auth)
		{
			sales.POST("", ctl.Sale.Checkout)
			sales.GET("", ctl.Sale.ListSales)
			sales.GET("/:id", ctl.Sale.GetSale)
			sales.PATCH("/:id/status", ctl.Sale.UpdateStatus)
			sales.POST("/:id/cancel", ctl.Sale.CancelSale)
		}

		// my-sales 卖家视图
		mySales := api.Group("/my-sales", auth, middleware.RequireSeller())
		{
			mySales.GET("", ctl.Sale.ListMySales)
			mySales.GET("/summary", ctl.Sale.GetMySalesSummary)
		}

		// reviews 评价
		reviews := api.Group("/reviews")
		{
			reviews.GET("", ctl.Review.ListReviews)
			reviews.GET("/product/:productId", ctl.Review.ListProductReviews)
			reviews.GET("/user/me", auth, ctl.Review.ListMyReviews)
			reviews.GET("/:id", ctl.Review.GetReview)
			reviews.POST("", auth, ctl.Review.CreateReview)
			reviews.PUT("/:id", auth, ctl.Review.UpdateReview)
			reviews.DELETE("/:id", auth, ctl.Review.DeleteReview)
		}

		// favorites 收藏
		favorites := api.Group("/favorites", auth)
		{
			favorites.GET("", ctl.Favorite.ListFavorites)
			favorites.POST("/toggle", ctl.Favorite.ToggleFavorite)
		}

		// likes 点赞
		likes := api.Group("/likes")
		{
			likes.GET("/user/me", auth, ctl.Like.ListMyLikes)
			likes.GET("/check/:productId", auth, ctl.Like.CheckLike)
			likes.POST("", auth, ctl.Like.LikeProduct)
			likes.DELETE("/:productId", auth, ctl.Like.UnlikeProduct)
			likes.POST("/toggle/:productId", auth, ctl.Like.ToggleLike)
			likes.GET("/product/:id/count", ctl.Like.CountLikes)
			likes.GET("/product/:id/users", ctl.Like.ListLikeUsers)
		}

		// notifications 通知
		notifications := api.Group("/notifications")
		{
			notifications.POST("/subscribe", ctl.Notification.Subscribe)
			notifications.GET("", auth, ctl.Notification.ListNotifications)
			notifications.GET("/unread-count", auth, ctl.Notification.UnreadCount)
			notifications.PATCH("/read-all", auth, ctl.Notification.MarkAllRead)
			notifications.PATCH("/:id/read", auth, ctl.Notification.MarkRead)
			notifications.DELETE("/:id", auth, ctl.Notification.DeleteNotification)
		}

		// images 图片
		images := api.Group("/images")
		{
			images.POST("/upload", auth, ctl.Image.Upload)
			images.POST("/upload-multiple", auth, ctl.Image.UploadMultiple)
			images.POST("/import", auth, ctl.Image.Import)
			images.POST("/presigned-url", auth, ctl.Image.PresignedURL)
			images.GET("/folder/:folder", ctl.Image.ListFolder)
			images.GET("/:id", ctl.Image.GetImage)
			images.DELETE("/:id", auth, ctl.Image.DeleteImage)
		}
	}
}
