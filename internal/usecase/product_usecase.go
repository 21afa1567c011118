package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
	}
}

// GET /api/productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (pagination.Page[model.Product], error) {
	p, err := pageParams(in.Page, in.Limit)
	if err != nil {
		return pagination.Page[model.Product]{}, err
	}
	if len(in.Q) > 100 {
		return pagination.Page[model.Product]{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return pagination.Page[model.Product]{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return pagination.Page[model.Product]{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return pagination.Page[model.Product]{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return pagination.Page[model.Product]{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       p,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return pagination.Page[model.Product]{}, dbError(err)
	}
	return pagination.NewPage(items, p, total), nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	return p, nil
}

// 管理者の商品作成/更新の入力
type ProductInput struct {
	CategoryID  *int64
	Name        string
	Description string
	Price       int64
	Unit        string
	Stock       int64
	ImageURL    string
	Images      []string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

func (in ProductInput) toModel(id int64) model.Product {
	p := model.Product{
		ID:          id,
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Unit:        strings.TrimSpace(in.Unit),
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if len(in.Images) > 0 {
		p.Images = append(p.Images, in.Images...)
	}
	// 代表画像が無ければ1枚目を使う
	if p.ImageURL == "" && len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}
	return p
}

// カテゴリ指定がある時だけ存在確認
func ensureCategory(ctx context.Context, r repo.TxRepos, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	_, err := r.Categories().FindByID(ctx, *categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusBadRequest, "category not found")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureCategory(ctx, r, in.CategoryID); err != nil {
			return err
		}
		p, err := r.Products().Create(ctx, in.toModel(0))
		if err != nil {
			return dbError(err)
		}
		out = p
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, nil, p)
	})
	if err != nil {
		return model.Product{}, txError(err)
	}
	return out, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return dbError(err)
		}
		if err := ensureCategory(ctx, r, in.CategoryID); err != nil {
			return err
		}

		if err := r.Products().Update(ctx, in.toModel(productID)); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return dbError(err)
		}

		after, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return dbError(err)
		}
		out = after
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, after)
	})
	if err != nil {
		return model.Product{}, txError(err)
	}
	return out, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return dbError(err)
		}
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			return dbError(err)
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before, nil)
	})
	return txError(err)
}

const defaultLowStockThreshold = 10

func (u *ProductUsecase) AdminListLowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	if threshold == 0 {
		threshold = defaultLowStockThreshold
	}
	if threshold < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "threshold must be >= 0")
	}
	items, err := u.productRepo.ListLowStock(ctx, threshold, pagination.MaxLimit)
	if err != nil {
		return nil, dbError(err)
	}
	return items, nil
}

type AdminUpdateInventoryInput struct {
	Stock  int64
	Reason string
}

// 在庫を指定値にし、調整履歴と監査ログを残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, in AdminUpdateInventoryInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "manual adjustment"
	}
	if len(reason) > 255 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Inventory().SetStock(ctx, productID, in.Stock); err != nil {
			return dbError(err)
		}
		adj := model.NewInventoryAdjustment(productID, adminUserID, p.Stock, in.Stock, reason)
		if err := r.Inventory().RecordAdjustment(ctx, adj); err != nil {
			return dbError(err)
		}

		before := map[string]int64{"stock": p.Stock}
		after := map[string]int64{"stock": in.Stock}
		if err := writeAudit(ctx, r, adminUserID, model.AuditActionUpdateStock, model.AuditResourceProduct, productID, before, after); err != nil {
			return err
		}

		p.Stock = in.Stock
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, txError(err)
	}
	return out, nil
}

// 監査ログを1件書く。before/afterはJSONにして保存
func writeAudit(ctx context.Context, r repo.TxRepos, actor int64, action model.AuditAction, rt model.AuditResourceType, id int64, before, after any) error {
	b, err := toJSON(before)
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "internal error", err)
	}
	a, err := toJSON(after)
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "internal error", err)
	}
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		BeforeJSON:   b,
		AfterJSON:    a,
		CreatedAt:    time.Now(),
	}); err != nil {
		return dbError(err)
	}
	return nil
}

func toJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal audit payload: %w", err)
	}
	return string(b), nil
}
