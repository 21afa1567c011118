package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

// CartUsecase は /api/cart の業務ロジックです。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(cartItemRepo repo.CartItemRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// price は現在の商品価格
type CartItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
	Count int64              `json:"count"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError(err)
	}
	return toCartResponse(items), nil
}

// 同じ商品は数量を加算。合計が在庫を超えたら400
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, dbError(err)
	}

	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError(err)
	}
	current := int64(0)
	for _, it := range items {
		if it.ProductID == in.ProductID {
			current = it.Quantity
			break
		}
	}
	// current+in.Quantityはint64で溢れるので引き算で比べる
	if in.Quantity > p.Stock-current {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if _, err := u.cartItemRepo.AddQuantity(ctx, userID, in.ProductID, in.Quantity); err != nil {
		return CartResponse{}, dbError(err)
	}
	return u.GetCart(ctx, userID)
}

// quantity <= 0 は削除扱い
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, itemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	it, err := u.ownedItem(ctx, userID, itemID)
	if err != nil {
		return CartResponse{}, err
	}

	if in.Quantity <= 0 {
		if err := u.cartItemRepo.DeleteByID(ctx, it.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, dbError(err)
		}
		return u.GetCart(ctx, userID)
	}

	p, err := u.productRepo.FindByID(ctx, it.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, dbError(err)
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, it.ID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return CartResponse{}, dbError(err)
	}
	return u.GetCart(ctx, userID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	it, err := u.ownedItem(ctx, userID, itemID)
	if err != nil {
		return CartResponse{}, err
	}
	if err := u.cartItemRepo.DeleteByID(ctx, it.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, dbError(err)
	}
	return u.GetCart(ctx, userID)
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.cartItemRepo.ClearByUserID(ctx, userID); err != nil {
		return dbError(err)
	}
	return nil
}

// 他人の明細は存在しない扱い(404)
func (u *CartUsecase) ownedItem(ctx context.Context, userID, itemID int64) (model.CartItem, error) {
	if itemID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	it, err := u.cartItemRepo.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && it.UserID != userID) {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "cart item not found")
	}
	if err != nil {
		return model.CartItem{}, dbError(err)
	}
	return it, nil
}

// 削除済み商品の行は合計に含めない
func toCartResponse(items []model.CartItem) CartResponse {
	out := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		line := it.Product.Price * it.Quantity
		out.Items = append(out.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Unit:      it.Product.Unit,
			ImageURL:  it.Product.ImageURL,
			Price:     it.Product.Price,
			Stock:     it.Product.Stock,
			Quantity:  it.Quantity,
			LineTotal: line,
		})
		out.Total += line
		out.Count += it.Quantity
	}
	return out
}
