package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace_api/internal/config"
	"marketplace_api/internal/controller"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
	"marketplace_api/internal/router"
	"marketplace_api/internal/service"
	"marketplace_api/internal/task"
	"marketplace_api/pkg/database"
	"marketplace_api/pkg/logger"
	"marketplace_api/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, err := logger.Init(cfg.Server.Mode); err != nil {
		return err
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	// 1. 初始化数据库
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}

	// 2. 初始化依赖
	deps, err := initDependencies(cfg, db)
	if err != nil {
		return err
	}

	// 3. 启动定时任务
	tasks := initTasks(cfg, deps)
	defer tasks.Stop()

	// 4. 初始化路由
	handler := initRouter(cfg, deps)

	// 5. 启动服务
	return startServer(cfg.Server.Port, handler)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	AuthLimiter *middleware.IPRateLimiter
}

// Repositories 仓库集合
type Repositories struct {
	User         repository.UserRepository
	Store        repository.StoreRepository
	Product      repository.ProductRepository
	Cart         repository.CartRepository
	Sale         repository.SaleRepository
	Review       repository.ReviewRepository
	Favorite     repository.FavoriteRepository
	Like         repository.LikeRepository
	Notification repository.NotificationRepository
	Image        repository.ImageRepository
	Uow          *repository.UnitOfWork
}

// Services 服务集合
type Services struct {
	Storage      *service.StorageService
	User         *service.UserService
	Store        *service.StoreService
	Product      *service.ProductService
	Cart         *service.CartService
	Sale         *service.SaleService
	Review       *service.ReviewService
	Favorite     *service.FavoriteService
	Like         *service.LikeService
	Notification *service.NotificationService
	Image        *service.ImageService
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库并按 init_mode 初始化表结构
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	initializer := database.NewInitializer(db, database.InitOptions{
		DSN:    cfg.Database.DSN,
		Models: model.AllModels(),
	})
	if err := initializer.Initialize(ctx, cfg.Database.InitMode); err != nil {
		return nil, err
	}
	return db, nil
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTTL,
		Issuer:          cfg.JWT.Issuer,
	})

	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 基础服务 --------
	storageSvc, err := service.NewStorageService(cfg.Storage)
	if err != nil {
		return nil, err
	}
	notificationSvc := service.NewNotificationService(repos.Notification, initSubscriber(cfg))
	httpClient := utils.NewHTTPClient(20 * time.Second)

	// -------- 业务服务 --------
	services := initServices(cfg, repos, storageSvc, notificationSvc, httpClient)

	// -------- Controller 层 --------
	controllers := initControllers(db, services)

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		AuthLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db),
		Store:        repository.NewStoreRepository(db),
		Product:      repository.NewProductRepository(db),
		Cart:         repository.NewCartRepository(db),
		Sale:         repository.NewSaleRepository(db),
		Review:       repository.NewReviewRepository(db),
		Favorite:     repository.NewFavoriteRepository(db),
		Like:         repository.NewLikeRepository(db),
		Notification: repository.NewNotificationRepository(db),
		Image:        repository.NewImageRepository(db),
		Uow:          repository.NewUnitOfWork(db),
	}
}

// initSubscriber SNS 未配置时返回 nil 接口，订阅接口返回 503
func initSubscriber(cfg *config.Config) service.EmailSubscriber {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := service.NewSNSSubscriber(ctx, cfg.Notify)
	if err != nil {
		zap.L().Warn("SNS 初始化失败，邮件订阅不可用", zap.Error(err))
		return nil
	}
	if sub == nil {
		return nil
	}
	return sub
}

func initServices(
	cfg *config.Config,
	repos *Repositories,
	storageSvc *service.StorageService,
	notificationSvc *service.NotificationService,
	httpClient *resty.Client,
) *Services {
	productSvc := service.NewProductService(repos.Product, repos.Store, repos.Review, repos.Favorite)

	return &Services{
		Storage:      storageSvc,
		Notification: notificationSvc,
		User:         service.NewUserService(repos.User),
		Product:      productSvc,
		Store:        service.NewStoreService(repos.Store, repos.Uow, productSvc),
		Cart: service.NewCartService(
			repos.Cart, repos.Product, repos.Uow,
			repos.Review, repos.Favorite, repos.Store,
		),
		Sale: service.NewSaleService(repos.Uow, repos.Sale, repos.Cart, notificationSvc),
		Review: service.NewReviewService(
			repos.Review, repos.Product, repos.Sale,
			notificationSvc, cfg.Review.RequirePurchase,
		),
		Favorite: service.NewFavoriteService(repos.Favorite, repos.Product, repos.Review, repos.Store),
		Like: service.NewLikeService(
			repos.Like, repos.Product,
			repos.Review, repos.Favorite, repos.Store,
		),
		Image: service.NewImageService(repos.Image, storageSvc, httpClient),
	}
}

// initControllers 初始化所有控制器
func initControllers(db *gorm.DB, svc *Services) *router.Controllers {
	return &router.Controllers{
		Health:       controller.NewHealthController(db),
		User:         controller.NewUserController(svc.User),
		Store:        controller.NewStoreController(svc.Store),
		Product:      controller.NewProductController(svc.Product),
		Cart:         controller.NewCartController(svc.Cart),
		Sale:         controller.NewSaleController(svc.Sale),
		Review:       controller.NewReviewController(svc.Review),
		Favorite:     controller.NewFavoriteController(svc.Favorite),
		Like:         controller.NewLikeController(svc.Like),
		Notification: controller.NewNotificationController(svc.Notification),
		Image:        controller.NewImageController(svc.Image),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies) *task.TaskManager {
	enabled := cfg.Tasks.Enabled
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		Notifications: deps.Services.Notification,
		Carts:         deps.Repos.Cart,
		Limiter:       deps.AuthLimiter,
	}, &task.TaskManagerConfig{
		NotificationEnabled:   enabled,
		NotificationRetention: time.Duration(cfg.Tasks.NotificationRetentionDays) * 24 * time.Hour,
		CartPruneEnabled:      enabled,
		HousekeepingEnabled:   true,
	})

	if err := tm.Start(); err != nil {
		zap.L().Error("定时任务启动失败", zap.Error(err))
	}
	return tm
}

// ==================== 路由 ====================

func initRouter(cfg *config.Config, deps *Dependencies) http.Handler {
	r := router.NewEngine()

	opts := router.Options{
		LoadUser:           deps.Services.User.LoadActiveUser,
		AuthLimiter:        deps.AuthLimiter,
		MaxMultipartMemory: cfg.Storage.MaxUploadSize * int64(cfg.Storage.MaxFiles),
	}
	if cfg.Storage.Provider == "local" {
		opts.UploadsDir = cfg.Storage.BasePath
		if opts.UploadsDir == "" {
			opts.UploadsDir = "./uploads"
		}
	}
	router.InitRoutes(r, deps.Controllers, opts)

	return handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		handlers.AllowCredentials(),
	)(r)
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	zap.L().Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	zap.L().Info("服务已退出")
	return nil
}
