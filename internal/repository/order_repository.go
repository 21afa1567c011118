package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
)

// 注文一覧の絞り込み条件
type OrderListFilter struct {
	Page   pagination.Params
	Status string
	UserID *int64
}

type OrderRepository interface {
	// 明細付きで取得
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	// ステータスとロックをまとめて更新
	UpdateState(ctx context.Context, orderID int64, status model.OrderStatus, locked bool) error
}
