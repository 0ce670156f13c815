package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSale_NextActor(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		to     string
		actor  SaleActor
		wantOK bool
	}{
		{"卖家确认", SaleStatusPending, SaleStatusConfirmed, SaleActorSeller, true},
		{"卖家拒绝", SaleStatusPending, SaleStatusRejected, SaleActorSeller, true},
		{"买家取消", SaleStatusPending, SaleStatusCancelled, SaleActorBuyer, true},
		{"买家付款", SaleStatusConfirmed, SaleStatusPaid, SaleActorBuyer, true},
		{"跳过付款直接备货", SaleStatusConfirmed, SaleStatusPreparing, SaleActorSeller, true},
		{"发货", SaleStatusPreparing, SaleStatusShipped, SaleActorSeller, true},
		{"确认收货", SaleStatusDelivered, SaleStatusReceived, SaleActorBuyer, true},
		{"不能跨越状态", SaleStatusPending, SaleStatusShipped, "", false},
		{"终态不可流转", SaleStatusReceived, SaleStatusPending, "", false},
		{"已取消不可流转", SaleStatusCancelled, SaleStatusConfirmed, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := &Sale{Status: tt.from}
			actor, ok := sale.NextActor(tt.to)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.actor, actor)
		})
	}
}

func TestSale_StateHelpers(t *testing.T) {
	assert.True(t, (&Sale{Status: SaleStatusPending}).CanCancel())
	assert.False(t, (&Sale{Status: SaleStatusConfirmed}).CanCancel())

	for _, status := range []string{SaleStatusReceived, SaleStatusCancelled, SaleStatusRejected} {
		assert.True(t, (&Sale{Status: status}).IsFinished(), status)
	}
	assert.False(t, (&Sale{Status: SaleStatusShipped}).IsFinished())

	assert.True(t, IsValidSaleStatus(SaleStatusPaid))
	assert.False(t, IsValidSaleStatus("lost"))
	assert.False(t, IsValidSaleStatus(""))
}

func TestProduct_Purchasable(t *testing.T) {
	assert.True(t, (&Product{}).Purchasable())
	assert.False(t, (&Product{Paused: true}).Purchasable())
	assert.False(t, (&Product{Deleted: true}).Purchasable())
}

func TestUser(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"完整姓名", User{FirstName: "Ana", LastName: "Silva"}, "Ana Silva"},
		{"只有名", User{FirstName: "Ana"}, "Ana"},
		{"只有姓", User{LastName: "Silva"}, "Silva"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.FullName())
		})
	}

	assert.True(t, (&User{IsActive: true}).CanLogin())
	assert.False(t, (&User{IsActive: false}).CanLogin())
	assert.False(t, (&User{IsActive: true, Deleted: true}).CanLogin())
}
