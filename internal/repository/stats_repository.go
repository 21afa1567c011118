package repository

import "context"

// 管理画面ダッシュボードの集計値
type Stats struct {
	ProductsCount      int64 `json:"products_count"`
	OrdersCount        int64 `json:"orders_count"`
	PendingOrdersCount int64 `json:"pending_orders_count"`
	Revenue            int64 `json:"revenue"`
}

type BestSeller struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type StatsRepository interface {
	Summary(ctx context.Context) (Stats, error)
	// キャンセル以外の注文明細を商品ごとに集計し、数量の多い順に返す
	BestSellers(ctx context.Context, limit int) ([]BestSeller, error)
}
