package repository

import (
	"context"
	"errors"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"

	"gorm.io/gorm"
)

var errNonPositiveQty = errors.New("quantity must be positive")

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// products.stockへの条件付きUPDATE。更新件数を返す
// 論理削除済みの商品はModel(&Product{})のスコープで除外される
func (r *InventoryGormRepository) stockUpdate(ctx context.Context, value any, where string, args ...any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where(where, args...).
		UpdateColumn("stock", value)
	return res.RowsAffected, res.Error
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, stock int64) error {
	if stock < 0 {
		return errors.New("stock must not be negative")
	}
	n, err := r.stockUpdate(ctx, stock, "id = ?", productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 0件更新は「在庫不足」と「商品なし」を区別しない。呼び出し側は事前に商品を読んでいる
func (r *InventoryGormRepository) TakeStock(ctx context.Context, productID int64, qty int64) (bool, error) {
	if qty <= 0 {
		return false, errNonPositiveQty
	}
	n, err := r.stockUpdate(ctx, gorm.Expr("stock - ?", qty), "id = ? AND stock >= ?", productID, qty)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *InventoryGormRepository) RestoreStock(ctx context.Context, productID int64, qty int64) error {
	if qty <= 0 {
		return errNonPositiveQty
	}
	n, err := r.stockUpdate(ctx, gorm.Expr("stock + ?", qty), "id = ?", productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) RecordAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return translate(r.db.WithContext(ctx).Create(&adj).Error)
}
