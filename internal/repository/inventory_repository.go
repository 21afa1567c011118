package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
)

// InventoryRepository は products.stock を動かす唯一の入口。
// 読んでから書くのではなく、条件付きUPDATE1文で完結させる
type InventoryRepository interface {
	// 管理者による上書き。対象がなければErrNotFound
	SetStock(ctx context.Context, productID int64, stock int64) error
	// チェックアウト時の引当。stock >= qty の時だけ減らし、足りなければfalse
	TakeStock(ctx context.Context, productID int64, qty int64) (bool, error)
	// キャンセル・払い戻しで在庫に戻す
	RestoreStock(ctx context.Context, productID int64, qty int64) error
	RecordAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
