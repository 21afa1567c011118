package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"

	"gorm.io/gorm"
)

type StatsGormRepository struct {
	db *gorm.DB
}

func NewStatsGormRepository(db *gorm.DB) *StatsGormRepository {
	return &StatsGormRepository{db: db}
}

func (r *StatsGormRepository) Summary(ctx context.Context) (repo.Stats, error) {
	var s repo.Stats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&s.ProductsCount).Error; err != nil {
		return repo.Stats{}, err
	}
	if err := db.Model(&model.Order{}).Count(&s.OrdersCount).Error; err != nil {
		return repo.Stats{}, err
	}
	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusPending).
		Count(&s.PendingOrdersCount).Error; err != nil {
		return repo.Stats{}, err
	}

	// 売上はキャンセル以外の合計
	err := db.Model(&model.Order{}).
		Select("CAST(COALESCE(SUM(total), 0) AS BIGINT)").
		Where("status <> ?", model.OrderStatusCancelled).
		Row().Scan(&s.Revenue)
	if err != nil {
		return repo.Stats{}, err
	}
	return s, nil
}

func (r *StatsGormRepository) BestSellers(ctx context.Context, limit int) ([]repo.BestSeller, error) {
	out := []repo.BestSeller{}
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, order_items.product_name AS product_name, CAST(SUM(order_items.quantity) AS BIGINT) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", model.OrderStatusCancelled).
		Group("order_items.product_id, order_items.product_name").
		Order("quantity desc").Order("product_id asc").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return []repo.BestSeller{}, err
	}
	return out, nil
}
