package model

import "github.com/shopspring/decimal"

// SaleStatus 订单状态
const (
	SaleStatusPending   = "pending"   // 待确认
	SaleStatusConfirmed = "confirmed" // 卖家已确认
	SaleStatusPaid      = "paid"      // 买家已付款（附发票）
	SaleStatusPreparing = "preparing" // 备货中
	SaleStatusShipped   = "shipped"   // 已发货
	SaleStatusDelivered = "delivered" // 已送达
	SaleStatusReceived  = "received"  // 买家已确认收货
	SaleStatusCancelled = "cancelled" // 买家取消
	SaleStatusRejected  = "rejected"  // 卖家拒绝
)

// SaleActor 状态流转的操作方
type SaleActor string

const (
	SaleActorBuyer  SaleActor = "buyer"
	SaleActorSeller SaleActor = "seller"
)

// saleTransitions 合法流转表: 当前状态 -> 目标状态 -> 允许的操作方
var saleTransitions = map[string]map[string]SaleActor{
	SaleStatusPending: {
		SaleStatusConfirmed: SaleActorSeller,
		SaleStatusRejected:  SaleActorSeller,
		SaleStatusCancelled: SaleActorBuyer,
	},
	SaleStatusConfirmed: {
		SaleStatusPaid:      SaleActorBuyer,
		SaleStatusPreparing: SaleActorSeller,
	},
	SaleStatusPaid: {
		SaleStatusPreparing: SaleActorSeller,
	},
	SaleStatusPreparing: {
		SaleStatusShipped: SaleActorSeller,
	},
	SaleStatusShipped: {
		SaleStatusDelivered: SaleActorSeller,
	},
	SaleStatusDelivered: {
		SaleStatusReceived: SaleActorBuyer,
	},
}

// IsValidSaleStatus 状态值是否合法
func IsValidSaleStatus(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusConfirmed, SaleStatusPaid, SaleStatusPreparing,
		SaleStatusShipped, SaleStatusDelivered, SaleStatusReceived,
		SaleStatusCancelled, SaleStatusRejected:
		return true
	}
	return false
}

// Sale 订单（买家视角）
type Sale struct {
	BaseModel
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      string          `gorm:"size:20;index;default:pending" json:"status"`
	Note        string          `gorm:"type:text" json:"note"`
	Address     string          `gorm:"size:500" json:"address"`
	InvoiceID   *int64          `json:"invoice_id"`

	Items []SaleProduct `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

// NextActor 流转到 next 需要的操作方，不合法时 ok=false
func (s *Sale) NextActor(next string) (SaleActor, bool) {
	targets, ok := saleTransitions[s.Status]
	if !ok {
		return "", false
	}
	actor, ok := targets[next]
	return actor, ok
}

// CanCancel 仅待确认订单可取消
func (s *Sale) CanCancel() bool {
	return s.Status == SaleStatusPending
}

// IsFinished 终态
func (s *Sale) IsFinished() bool {
	_, ok := saleTransitions[s.Status]
	return !ok
}

// SaleProduct 订单行，价格在下单时固化
type SaleProduct struct {
	BaseModel
	SaleID     int64           `gorm:"index;not null" json:"sale_id"`
	ProductID  int64           `gorm:"index;not null" json:"product_id"`
	SellerID   int64           `gorm:"index;not null" json:"seller_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (SaleProduct) TableName() string {
	return "sale_products"
}
