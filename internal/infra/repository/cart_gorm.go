package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 商品情報付き。削除済み商品はProductがゼロ値になる
func (r *CartGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	var it model.CartItem
	if err := r.db.WithContext(ctx).First(&it, id).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return it, nil
}

// 同じ商品なら数量を加算する。行を増やさない
// 初回追加が同時に来てもユニーク制約で1行に寄せる（ON CONFLICT DO UPDATE）
func (r *CartGormRepository) AddQuantity(ctx context.Context, userID, productID, qty int64) (model.CartItem, error) {
	var out model.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it := model.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
					"updated_at": gorm.Expr("excluded.updated_at"),
				}),
			}).
			Create(&it).Error
		if err != nil {
			return translate(err)
		}

		// 加算後の値を読み直す
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&out).Error
	})
	if err != nil {
		return model.CartItem{}, err
	}
	return out, nil
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	res := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", id).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByID(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
