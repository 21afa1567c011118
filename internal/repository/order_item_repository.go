package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
)

// OrderItemRepository は注文明細の書き込み。明細は注文作成時に一度だけ書かれる。
// 読み出しは OrderRepository の Preload("Items") 経由
type OrderItemRepository interface {
	// items の OrderID は orderID で上書きされる。空なら何もしない
	InsertForOrder(ctx context.Context, orderID int64, items []model.OrderItem) error
}
