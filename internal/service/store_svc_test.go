package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_api/internal/api/dto"
)

func TestStoreService_Create(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "maker@example.com", false)

	store, err := env.storeSvc.Create(env.ctx, user.ID, &dto.CreateStoreRequest{
		StoreName: "Kiln & Co",
		CBU:       "0000003100010000000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kiln & Co", store.StoreName)
	assert.Equal(t, "0000003100010000000001", store.CBU)

	// 开店后成为卖家
	loaded, err := env.users.GetByID(env.ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsSeller)

	_, err = env.storeSvc.Create(env.ctx, user.ID, &dto.CreateStoreRequest{StoreName: "Second"})
	assert.ErrorIs(t, err, ErrStoreExists)
}

func TestStoreService_GetHidesCBU(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", false)
	visitor := env.createUser(t, "visitor@example.com", false)

	created, err := env.storeSvc.Create(env.ctx, owner.ID, &dto.CreateStoreRequest{StoreName: "Loom", CBU: "123"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		viewer  int64
		wantCBU string
	}{
		{"店主可见", owner.ID, "123"},
		{"访客不可见", visitor.ID, ""},
		{"未登录不可见", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := env.storeSvc.Get(env.ctx, created.ID, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCBU, info.CBU)
		})
	}

	_, err = env.storeSvc.Get(env.ctx, 9999, 0)
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestStoreService_UpdateAndProducts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", false)
	other := env.createUser(t, "other@example.com", true)

	created, err := env.storeSvc.Create(env.ctx, owner.ID, &dto.CreateStoreRequest{StoreName: "Loom"})
	require.NoError(t, err)

	name := "Loom Studio"
	_, err = env.storeSvc.Update(env.ctx, other.ID, created.ID, &dto.UpdateStoreRequest{StoreName: &name})
	assert.ErrorIs(t, err, ErrStoreForbidden)

	_, err = env.storeSvc.Update(env.ctx, owner.ID, created.ID, &dto.UpdateStoreRequest{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	updated, err := env.storeSvc.Update(env.ctx, owner.ID, created.ID, &dto.UpdateStoreRequest{StoreName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.StoreName)

	seller, err := env.users.GetByID(env.ctx, owner.ID)
	require.NoError(t, err)
	env.createProduct(t, seller, "Shawl", "35.00", 2)
	env.createProduct(t, other, "Other", "1.00", 2)

	products, err := env.storeSvc.Products(env.ctx, created.ID, &dto.ProductListQuery{}, 0)
	require.NoError(t, err)
	require.Len(t, products.Items, 1)
	assert.Equal(t, "Shawl", products.Items[0].Name)

	list, err := env.storeSvc.List(env.ctx, dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Empty(t, list.Items[0].CBU)
}
