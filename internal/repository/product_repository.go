package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
)

// 商品一覧の検索条件
type ProductListQuery struct {
	Page       pagination.Params
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
	// カテゴリを参照している商品数（削除済みは除く）
	CountByCategoryID(ctx context.Context, categoryID int64) (int64, error)
	// stock < threshold の商品を在庫の少ない順に返す
	ListLowStock(ctx context.Context, threshold int64, limit int) ([]model.Product, error)
}
