package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace_api/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "连接测试数据库失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...), "数据库迁移失败")
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "x", IsActive: true}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID int64, name, price string) *model.Product {
	t.Helper()
	product := &model.Product{SellerID: sellerID, Name: name, Price: decimal.RequireFromString(price), Stock: 10}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), product))
	return product
}

// ==================== Cart ====================

func TestCartRepository_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")

	first, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	var n int64
	require.NoError(t, db.Model(&model.Cart{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCartRepository_ReplaceItemsAndOrphans(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")
	keep := seedProduct(t, db, user.ID, "keep", "1.00")
	gone := seedProduct(t, db, user.ID, "gone", "2.00")

	cart, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceItems(ctx, cart.ID, []model.CartItem{
		{ProductID: keep.ID, Quantity: 1, UnitPrice: keep.Price},
		{ProductID: gone.ID, Quantity: 2, UnitPrice: gone.Price},
	}))

	items, err := repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Product, "条目附带商品")

	require.NoError(t, NewProductRepository(db).SoftDelete(ctx, gone.ID))
	removed, err := repo.DeleteOrphanItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	items, err = repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ProductID)
}

// ==================== Sale ====================

func createSale(t *testing.T, db *gorm.DB, buyerID int64, status string, lines ...model.SaleProduct) *model.Sale {
	t.Helper()
	ctx := context.Background()
	repo := NewSaleRepository(db)

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
	}
	sale := &model.Sale{UserID: buyerID, TotalAmount: total, Status: status}
	require.NoError(t, repo.Create(ctx, sale))
	for i := range lines {
		lines[i].SaleID = sale.ID
	}
	require.NoError(t, repo.CreateItems(ctx, lines))
	return sale
}

func line(product *model.Product, quantity int) model.SaleProduct {
	return model.SaleProduct{
		ProductID:  product.ID,
		SellerID:   product.SellerID,
		Quantity:   quantity,
		UnitPrice:  product.Price,
		TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func TestSaleRepository_SellerViewAndSummary(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	sellerA := seedUser(t, db, "a@example.com")
	sellerB := seedUser(t, db, "b@example.com")
	buyer := seedUser(t, db, "buyer@example.com")
	pa := seedProduct(t, db, sellerA.ID, "pa", "10.00")
	pb := seedProduct(t, db, sellerB.ID, "pb", "3.50")

	createSale(t, db, buyer.ID, model.SaleStatusPending, line(pa, 2), line(pb, 1))
	createSale(t, db, buyer.ID, model.SaleStatusShipped, line(pa, 1))
	createSale(t, db, buyer.ID, model.SaleStatusCancelled, line(pa, 5))
	createSale(t, db, buyer.ID, model.SaleStatusPending, line(pb, 4))

	sales, total, err := repo.List(ctx, SaleFilter{SellerID: sellerA.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, s := range sales {
		for _, item := range s.Items {
			assert.Equal(t, sellerA.ID, item.SellerID, "卖家只看到自己的订单行")
		}
	}

	summary, err := repo.SellerSummary(ctx, sellerA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalOrders)
	assert.Equal(t, int64(3), summary.UnitsSold)
	assert.Equal(t, "30.00", summary.Revenue.StringFixed(2))
	assert.Equal(t, map[string]int64{
		model.SaleStatusPending:   1,
		model.SaleStatusShipped:   1,
		model.SaleStatusCancelled: 1,
	}, summary.ByStatus)

	has, err := repo.HasSellerItem(ctx, sales[0].ID, sellerA.ID)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repo.HasSellerItem(ctx, sales[0].ID, -1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSaleRepository_UpdateStatusConditional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	seller := seedUser(t, db, "s@example.com")
	buyer := seedUser(t, db, "b@example.com")
	p := seedProduct(t, db, seller.ID, "p", "1.00")
	sale := createSale(t, db, buyer.ID, model.SaleStatusPending, line(p, 1))

	ok, err := repo.UpdateStatus(ctx, sale.ID, model.SaleStatusPending, map[string]interface{}{"status": model.SaleStatusConfirmed})
	require.NoError(t, err)
	assert.True(t, ok)

	// 状态已变化，旧状态条件不再命中
	ok, err = repo.UpdateStatus(ctx, sale.ID, model.SaleStatusPending, map[string]interface{}{"status": model.SaleStatusCancelled})
	require.NoError(t, err)
	assert.False(t, ok)

	loaded, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusConfirmed, loaded.Status)
}

func TestSaleRepository_HasPurchased(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	seller := seedUser(t, db, "s@example.com")
	buyer := seedUser(t, db, "b@example.com")
	p := seedProduct(t, db, seller.ID, "p", "1.00")

	createSale(t, db, buyer.ID, model.SaleStatusCancelled, line(p, 1))
	bought, err := repo.HasPurchased(ctx, buyer.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, bought, "取消的订单不算购买")

	createSale(t, db, buyer.ID, model.SaleStatusPending, line(p, 1))
	bought, err = repo.HasPurchased(ctx, buyer.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, bought)
}

// ==================== 唯一约束 ====================

func TestUniqueConstraints_TranslateError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")
	p := seedProduct(t, db, user.ID, "p", "1.00")

	tests := []struct {
		name   string
		seeded bool
		create func() error
	}{
		{"收藏", false, func() error { return NewFavoriteRepository(db).Create(ctx, user.ID, p.ID) }},
		{"点赞", false, func() error { return NewLikeRepository(db).Create(ctx, user.ID, p.ID) }},
		{"评价", false, func() error {
			return NewReviewRepository(db).Create(ctx, &model.Review{UserID: user.ID, ProductID: p.ID, Rating: 5})
		}},
		{"邮箱", true, func() error {
			return NewUserRepository(db).Create(ctx, &model.User{Email: "a@example.com", Password: "x"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.seeded {
				require.NoError(t, tt.create())
			}
			assert.ErrorIs(t, tt.create(), gorm.ErrDuplicatedKey)
		})
	}
}

// ==================== Notification ====================

func TestNotificationRepository_DeleteReadBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")

	require.NoError(t, repo.CreateBatch(ctx, []model.Notification{
		{UserID: user.ID, Title: "old", Read: true},
		{UserID: user.ID, Title: "new", Read: true},
		{UserID: user.ID, Title: "unread"},
	}))
	require.NoError(t, db.Model(&model.Notification{}).Where("title = ?", "old").
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	removed, err := repo.DeleteReadBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	unread, err := repo.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

// ==================== UnitOfWork ====================

func TestUnitOfWork_Rollback(t *testing.T) {
	db := setupTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")

	boom := errors.New("boom")
	err := uow.Transaction(ctx, func(tx *UnitOfWork) error {
		if err := tx.Stores.Create(ctx, &model.Store{UserID: user.ID, StoreName: "s"}); err != nil {
			return err
		}
		if err := tx.Users.SetSeller(ctx, user.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	store, err := NewStoreRepository(db).GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, store, "事务回滚后店铺不存在")

	loaded, err := NewUserRepository(db).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsSeller)
}

// ==================== Product ====================

func TestProductRepository_ListHidesDeletedSellers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	active := seedUser(t, db, "active@example.com")
	gone := seedUser(t, db, "gone@example.com")
	seedProduct(t, db, active.ID, "visible", "1.00")
	seedProduct(t, db, gone.ID, "hidden", "1.00")
	require.NoError(t, NewUserRepository(db).SoftDelete(ctx, gone.ID))

	products, total, err := repo.List(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "visible", products[0].Name)
}

func TestProductRepository_DeletedSellerLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	active := seedUser(t, db, "active@example.com")
	gone := seedUser(t, db, "gone@example.com")
	visible := seedProduct(t, db, active.ID, "visible", "1.00")
	orphan := seedProduct(t, db, gone.ID, "orphan", "1.00")
	require.NoError(t, NewUserRepository(db).SoftDelete(ctx, gone.ID))

	p, err := repo.GetVisibleByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Nil(t, p, "卖家注销后商品不可见")

	p, err = repo.GetVisibleByID(ctx, visible.ID)
	require.NoError(t, err)
	assert.NotNil(t, p)

	products, err := repo.GetByIDs(ctx, []int64{visible.ID, orphan.ID})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[visible.ID].Purchasable())
	assert.True(t, products[orphan.ID].SellerDeleted)
	assert.False(t, products[orphan.ID].Purchasable())
}

// ==================== 分页 ====================

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset int
		wantLimit  int
	}{
		{"默认值", 0, 0, 0, 20},
		{"第二页", 2, 10, 10, 10},
		{"单页数量上限", 1, 5000, 0, maxPageSize},
		{"页码溢出", math.MaxInt, 10, (maxPage - 1) * 10, 10},
		{"页码与数量同时过大", math.MaxInt, math.MaxInt, (maxPage - 1) * maxPageSize, maxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := pageOffset(tt.page, tt.size, 20)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}

	db := setupTestDB(t)
	seller := seedUser(t, db, "s@example.com")
	seedProduct(t, db, seller.ID, "p", "1.00")

	products, total, err := NewProductRepository(db).List(context.Background(), ProductFilter{Page: math.MaxInt, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, products)
}
