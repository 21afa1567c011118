package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
)

type CartItemRepository interface {
	// 商品情報付きで追加順に返す
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, id int64) (model.CartItem, error)
	// 同じ商品の行があれば数量を加算、無ければ作成
	AddQuantity(ctx context.Context, userID, productID, qty int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, id int64, qty int64) error
	DeleteByID(ctx context.Context, id int64) error
	ClearByUserID(ctx context.Context, userID int64) error
}
