package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace_api/internal/config"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// ==================== 测试环境 ====================

// testEnv 基于内存 SQLite 的完整服务集合
type testEnv struct {
	db  *gorm.DB
	ctx context.Context

	users         repository.UserRepository
	stores        repository.StoreRepository
	products      repository.ProductRepository
	carts         repository.CartRepository
	sales         repository.SaleRepository
	reviews       repository.ReviewRepository
	favorites     repository.FavoriteRepository
	likes         repository.LikeRepository
	notifications repository.NotificationRepository
	images        repository.ImageRepository

	userSvc         *UserService
	storeSvc        *StoreService
	productSvc      *ProductService
	cartSvc         *CartService
	saleSvc         *SaleService
	reviewSvc       *ReviewService
	favoriteSvc     *FavoriteService
	likeSvc         *LikeService
	notificationSvc *NotificationService
	imageSvc        *ImageService
	storageSvc      *StorageService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "连接测试数据库失败")

	// 内存库每个连接独立，必须固定为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	env := &testEnv{
		db:            db,
		ctx:           context.Background(),
		users:         repository.NewUserRepository(db),
		stores:        repository.NewStoreRepository(db),
		products:      repository.NewProductRepository(db),
		carts:         repository.NewCartRepository(db),
		sales:         repository.NewSaleRepository(db),
		reviews:       repository.NewReviewRepository(db),
		favorites:     repository.NewFavoriteRepository(db),
		likes:         repository.NewLikeRepository(db),
		notifications: repository.NewNotificationRepository(db),
		images:        repository.NewImageRepository(db),
	}
	uow := repository.NewUnitOfWork(db)

	storageSvc, err := NewStorageService(config.StorageConfig{
		Provider:      "local",
		BasePath:      t.TempDir(),
		Endpoint:      "http://localhost:3000/uploads",
		MaxUploadSize: 1 << 20,
		MaxFiles:      3,
	})
	require.NoError(t, err)

	env.storageSvc = storageSvc
	env.notificationSvc = NewNotificationService(env.notifications, nil)
	env.userSvc = NewUserService(env.users)
	env.productSvc = NewProductService(env.products, env.stores, env.reviews, env.favorites)
	env.storeSvc = NewStoreService(env.stores, uow, env.productSvc)
	env.cartSvc = NewCartService(env.carts, env.products, uow, env.reviews, env.favorites, env.stores)
	env.saleSvc = NewSaleService(uow, env.sales, env.carts, env.notificationSvc)
	env.reviewSvc = NewReviewService(env.reviews, env.products, env.sales, env.notificationSvc, false)
	env.favoriteSvc = NewFavoriteService(env.favorites, env.products, env.reviews, env.stores)
	env.likeSvc = NewLikeService(env.likes, env.products, env.reviews, env.favorites, env.stores)
	env.imageSvc = NewImageService(env.images, storageSvc, nil)
	return env
}

// ==================== 测试数据 ====================

func (e *testEnv) createUser(t *testing.T, email string, seller bool) *model.User {
	t.Helper()
	user := &model.User{
		Email:     email,
		Password:  "not-a-real-hash",
		FirstName: "Test",
		LastName:  "User",
		IsSeller:  seller,
		IsActive:  true,
	}
	require.NoError(t, e.users.Create(e.ctx, user))
	return user
}

func (e *testEnv) createProduct(t *testing.T, seller *model.User, name, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		SellerID: seller.ID,
		Name:     name,
		Category: "ceramics",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
	require.NoError(t, e.products.Create(e.ctx, product))
	return product
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}
