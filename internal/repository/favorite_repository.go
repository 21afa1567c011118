package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
)

type FavoriteRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error)
	// 既にあればErrDuplicate
	Create(ctx context.Context, f model.Favorite) (model.Favorite, error)
	Delete(ctx context.Context, userID, productID int64) error
	Exists(ctx context.Context, userID, productID int64) (bool, error)
}
