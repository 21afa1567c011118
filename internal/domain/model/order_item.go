package model

import "time"

// 注文時点の商品情報のスナップショット
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	TotalPrice  int64     `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
