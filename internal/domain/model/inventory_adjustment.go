package model

import "time"

// InventoryAdjustment は管理者が在庫数を直接書き換えた記録。
// Delta = StockAfter - StockBefore
type InventoryAdjustment struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64 `gorm:"not null;index" json:"product_id"`
	AdminUserID int64 `gorm:"not null;index" json:"admin_user_id"`

	StockBefore int64 `gorm:"not null;default:0" json:"stock_before"`
	StockAfter  int64 `gorm:"not null;default:0" json:"stock_after"`
	Delta       int64 `gorm:"not null" json:"delta"`

	Reason    string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// NewInventoryAdjustment は前後の在庫から差分を計算して記録を作る
func NewInventoryAdjustment(productID, adminUserID, before, after int64, reason string) InventoryAdjustment {
	return InventoryAdjustment{
		ProductID:   productID,
		AdminUserID: adminUserID,
		StockBefore: before,
		StockAfter:  after,
		Delta:       after - before,
		Reason:      reason,
	}
}
