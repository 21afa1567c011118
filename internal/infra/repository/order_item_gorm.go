package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 1回のINSERTに載せる明細数
const orderItemBatchSize = 100

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) InsertForOrder(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(&items, orderItemBatchSize).Error
	return translate(err)
}
