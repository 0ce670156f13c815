package service

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
)

func TestProductService_List_Pagination(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@example.com", true)
	for i := 0; i < 25; i++ {
		env.createProduct(t, seller, fmt.Sprintf("Item %02d", i), "1.00", 1)
	}

	page1, err := env.productSvc.List(env.ctx, &dto.ProductListQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 10}}, 0)
	require.NoError(t, err)
	page2, err := env.productSvc.List(env.ctx, &dto.ProductListQuery{PageQuery: dto.PageQuery{Page: 2, Limit: 10}}, 0)
	require.NoError(t, err)
	page3, err := env.productSvc.List(env.ctx, &dto.ProductListQuery{PageQuery: dto.PageQuery{Page: 3, Limit: 10}}, 0)
	require.NoError(t, err)

	assert.Len(t, page1.Items, 10)
	assert.Len(t, page2.Items, 10)
	assert.Len(t, page3.Items, 5)

	seen := map[int64]bool{}
	for _, page := range [][]dto.ProductInfo{page1.Items, page2.Items, page3.Items} {
		for _, p := range page {
			assert.False(t, seen[p.ID], "分页结果不应重叠: %d", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	p := page1.Pagination
	assert.Equal(t, int64(25), p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)
	assert.False(t, page3.Pagination.HasNext)
	assert.Nil(t, page1.Items[0].IsFavorite, "未登录不返回收藏状态")
}

func TestProductService_List_Filters(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@example.com", true)
	other := env.createUser(t, "other@example.com", true)
	buyer := env.createUser(t, "buyer@example.com", false)

	mug := env.createProduct(t, seller, "Blue Mug", "10.00", 3)
	env.createProduct(t, seller, "Red Plate", "12.00", 3)
	env.createProduct(t, other, "Blue Scarf", "20.00", 3)
	paused := env.createProduct(t, seller, "Blue Hidden", "5.00", 3)
	require.NoError(t, env.products.UpdateFields(env.ctx, paused.ID, map[string]interface{}{"paused": true}))

	tests := []struct {
		name  string
		query dto.ProductListQuery
		want  int
	}{
		{"全部在售商品", dto.ProductListQuery{}, 3},
		{"关键字不区分大小写", dto.ProductListQuery{Search: "blue"}, 2},
		{"按卖家", dto.ProductListQuery{SellerID: other.ID}, 1},
		{"按分类", dto.ProductListQuery{Category: "ceramics"}, 3},
		{"分类不存在", dto.ProductListQuery{Category: "toys"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			result, err := env.productSvc.List(env.ctx, &q, 0)
			require.NoError(t, err)
			assert.Len(t, result.Items, tt.want)
		})
	}

	t.Run("收藏过滤需要登录", func(t *testing.T) {
		_, err := env.productSvc.List(env.ctx, &dto.ProductListQuery{Liked: true}, 0)
		assert.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("只看收藏", func(t *testing.T) {
		_, err := env.favoriteSvc.Toggle(env.ctx, buyer.ID, mug.ID)
		require.NoError(t, err)

		result, err := env.productSvc.List(env.ctx, &dto.ProductListQuery{Liked: true}, buyer.ID)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, mug.ID, result.Items[0].ID)
		require.NotNil(t, result.Items[0].IsFavorite)
		assert.True(t, *result.Items[0].IsFavorite)
	})
}

func TestProductService_Create(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "buyer@example.com", false)
	seller := env.createUser(t, "seller@example.com", true)

	req := &dto.CreateProductReq{
		Name:     "Linen Towel",
		Category: "home",
		Price:    decimal.RequireFromString("14.995"),
		Stock:    7,
	}

	_, err := env.productSvc.Create(env.ctx, buyer, req)
	assert.ErrorIs(t, err, ErrNotSeller)

	for _, price := range []string{"0", "0.004", "-2"} {
		_, err = env.productSvc.Create(env.ctx, seller, &dto.CreateProductReq{Name: "Free", Price: decimal.RequireFromString(price)})
		assert.ErrorIs(t, err, ErrInvalidPrice, "价格 %s 保留两位后不为正", price)
	}
	assert.Equal(t, int64(0), env.count(t, &model.Product{}))

	info, err := env.productSvc.Create(env.ctx, seller, req)
	require.NoError(t, err)
	assert.Equal(t, "15.00", info.Price.StringFixed(2))
	assert.NotZero(t, info.StoreID, "首次发布自动开店")
	require.NotNil(t, info.Store)
	assert.Equal(t, "Test User's Store", info.Store.StoreName)

	second, err := env.productSvc.Create(env.ctx, seller, &dto.CreateProductReq{Name: "Napkin", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)
	assert.Equal(t, info.StoreID, second.StoreID, "同一卖家只有一个店铺")
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@example.com", true)
	intruder := env.createUser(t, "intruder@example.com", true)
	product := env.createProduct(t, seller, "Clay Pot", "9.00", 2)

	name := "Hacked"
	_, err := env.productSvc.Update(env.ctx, intruder.ID, product.ID, &dto.UpdateProductReq{Name: &name})
	assert.ErrorIs(t, err, ErrProductForbidden)

	_, err = env.productSvc.Update(env.ctx, seller.ID, product.ID, &dto.UpdateProductReq{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	for _, price := range []string{"-1", "0.004"} {
		bad := decimal.RequireFromString(price)
		_, err = env.productSvc.Update(env.ctx, seller.ID, product.ID, &dto.UpdateProductReq{Price: &bad})
		assert.ErrorIs(t, err, ErrInvalidPrice, price)
	}

	paused := true
	stock := 10
	updated, err := env.productSvc.Update(env.ctx, seller.ID, product.ID, &dto.UpdateProductReq{Paused: &paused, Stock: &stock})
	require.NoError(t, err)
	assert.True(t, updated.Paused)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, "Clay Pot", updated.Name)

	// 下架商品仍可查看详情
	_, err = env.productSvc.Get(env.ctx, product.ID, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, env.productSvc.Delete(env.ctx, intruder.ID, product.ID), ErrProductForbidden)
	require.NoError(t, env.productSvc.Delete(env.ctx, seller.ID, product.ID))

	_, err = env.productSvc.Get(env.ctx, product.ID, 0)
	assert.ErrorIs(t, err, ErrProductNotFound)

	// 软删除，记录仍在
	p, err := env.products.GetByID(env.ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Deleted)
}
