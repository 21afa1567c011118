package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteGormRepository struct {
	db *gorm.DB
}

func NewFavoriteGormRepository(db *gorm.DB) *FavoriteGormRepository {
	return &FavoriteGormRepository{db: db}
}

// 新しい順、商品情報付き
func (r *FavoriteGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error) {
	var fs []model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&fs).Error
	if err != nil {
		return []model.Favorite{}, err
	}
	return fs, nil
}

func (r *FavoriteGormRepository) Create(ctx context.Context, f model.Favorite) (model.Favorite, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&f).Error; err != nil {
		return model.Favorite{}, translate(err)
	}
	return f, nil
}

// 無くてもエラーにしない
func (r *FavoriteGormRepository) Delete(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Favorite{}).Error
}

func (r *FavoriteGormRepository) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
