package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type CategoryUsecase struct {
	categories repo.CategoryRepository
	products   repo.ProductRepository
	tx         repo.TransactionManager
}

func NewCategoryUsecase(categories repo.CategoryRepository, products repo.ProductRepository, tx repo.TransactionManager) *CategoryUsecase {
	return &CategoryUsecase{categories: categories, products: products, tx: tx}
}

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

func (in CategoryInput) normalize() (model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(slug) {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}
	return model.Category{Name: name, Slug: slug, Description: in.Description}, nil
}

// カテゴリと、そのカテゴリの商品一覧
type CategoryDetailOutput struct {
	Category model.Category                 `json:"category"`
	Products pagination.Page[model.Product] `json:"products"`
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categories.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return cs, nil
}

func (u *CategoryUsecase) GetBySlug(ctx context.Context, slug string, page, limit int) (CategoryDetailOutput, error) {
	p, err := pageParams(page, limit)
	if err != nil {
		return CategoryDetailOutput{}, err
	}

	c, err := u.categories.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryDetailOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryDetailOutput{}, dbError(err)
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{Page: p, CategoryID: &c.ID})
	if err != nil {
		return CategoryDetailOutput{}, dbError(err)
	}
	return CategoryDetailOutput{Category: c, Products: pagination.NewPage(items, p, total)}, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	c, err := in.normalize()
	if err != nil {
		return model.Category{}, err
	}
	created, err := u.categories.Create(ctx, c)
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Category{}, NewHTTPError(http.StatusConflict, "slug already exists")
	}
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return created, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in CategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := in.normalize()
	if err != nil {
		return model.Category{}, err
	}
	c.ID = id

	err = u.categories.Update(ctx, c)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return model.Category{}, NewHTTPError(http.StatusNotFound, "category not found")
	case errors.Is(err, repo.ErrDuplicate):
		return model.Category{}, NewHTTPError(http.StatusConflict, "slug already exists")
	case err != nil:
		return model.Category{}, dbError(err)
	}

	updated, err := u.categories.FindByID(ctx, id)
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return updated, nil
}

// 商品が1件でも紐づいていれば削除しない
func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Products().CountByCategoryID(ctx, id)
		if err != nil {
			return dbError(err)
		}
		if n > 0 {
			return NewHTTPError(http.StatusBadRequest, "category has products")
		}

		if err := r.Categories().Delete(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "category not found")
			}
			return dbError(err)
		}
		return nil
	})
	return txError(err)
}
