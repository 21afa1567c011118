package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

type FavoriteUsecase struct {
	favorites repo.FavoriteRepository
	products  repo.ProductRepository
}

func NewFavoriteUsecase(favorites repo.FavoriteRepository, products repo.ProductRepository) *FavoriteUsecase {
	return &FavoriteUsecase{favorites: favorites, products: products}
}

type FavoriteOutput struct {
	ID        int64         `json:"id"`
	ProductID int64         `json:"product_id"`
	CreatedAt time.Time     `json:"created_at"`
	Product   model.Product `json:"product"`
}

// 削除済み商品のお気に入りは返さない
func (u *FavoriteUsecase) List(ctx context.Context, userID int64) ([]FavoriteOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	fs, err := u.favorites.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	out := make([]FavoriteOutput, 0, len(fs))
	for _, f := range fs {
		if f.Product.ID == 0 {
			continue
		}
		out = append(out, FavoriteOutput{ID: f.ID, ProductID: f.ProductID, CreatedAt: f.CreatedAt, Product: f.Product})
	}
	return out, nil
}

func (u *FavoriteUsecase) Add(ctx context.Context, userID, productID int64) (FavoriteOutput, error) {
	if userID <= 0 {
		return FavoriteOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return FavoriteOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return FavoriteOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return FavoriteOutput{}, dbError(err)
	}

	f, err := u.favorites.Create(ctx, model.Favorite{UserID: userID, ProductID: productID})
	if errors.Is(err, repo.ErrDuplicate) {
		return FavoriteOutput{}, NewHTTPError(http.StatusConflict, "already in favorites")
	}
	if err != nil {
		return FavoriteOutput{}, dbError(err)
	}
	return FavoriteOutput{ID: f.ID, ProductID: productID, CreatedAt: f.CreatedAt, Product: p}, nil
}

// 無くても成功
func (u *FavoriteUsecase) Remove(ctx context.Context, userID, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err := u.favorites.Delete(ctx, userID, productID); err != nil {
		return dbError(err)
	}
	return nil
}

func (u *FavoriteUsecase) IsFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	if userID <= 0 {
		return false, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	ok, err := u.favorites.Exists(ctx, userID, productID)
	if err != nil {
		return false, dbError(err)
	}
	return ok, nil
}
