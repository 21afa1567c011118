package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 文字列を注文ステータスに変換する。未知の値はfalse。
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// 顧客がキャンセルできる状態か
func (s OrderStatus) CustomerCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64       `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency" json:"user_id"`
	Total           int64       `gorm:"not null" json:"total"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	FullName        string      `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone           string      `gorm:"type:varchar(50);not null" json:"phone"`
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`
	City            string      `gorm:"type:varchar(255)" json:"city"`
	IsLocked        bool        `gorm:"not null;default:false" json:"is_locked"`
	IdempotencyKey  *string     `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idempotency" json:"-"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}
