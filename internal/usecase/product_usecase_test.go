package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func TestListProducts_PassesFiltersAndBuildsMeta(t *testing.T) {
	repos := newTxReposMock()
	products := &ProductRepoMock{}
	uc := usecase.NewProductUsecase(products, newTx(repos))

	products.On("List", mock.Anything, repo.ProductListQuery{
		Page:       pagination.Params{Page: 2, Limit: 12},
		Q:          "rice",
		CategoryID: i64(3),
		Sort:       "price_asc",
	}).Return([]model.Product{{ID: 1, Name: "Rice"}}, int64(25), nil)

	page, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{
		Page: 2, Limit: 12, Q: "  rice ", CategoryID: i64(3), Sort: "price_asc",
	})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, pagination.Meta{Total: 25, Page: 2, Limit: 12, TotalPages: 3}, page.Meta)
}

func TestListProducts_EmptyDataIsNotNull(t *testing.T) {
	products := &ProductRepoMock{}
	uc := usecase.NewProductUsecase(products, newTx(newTxReposMock()))

	products.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), nil)

	page, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 0, page.Meta.TotalPages)
}

func TestListProducts_InvalidInput(t *testing.T) {
	uc := usecase.NewProductUsecase(&ProductRepoMock{}, newTx(newTxReposMock()))
	ctx := context.Background()

	cases := []struct {
		name string
		in   usecase.ListProductsInput
		want string
	}{
		{"page", usecase.ListProductsInput{Page: 0, Limit: 12}, "invalid page"},
		{"limit", usecase.ListProductsInput{Page: 1, Limit: 101}, "invalid limit"},
		{"sort", usecase.ListProductsInput{Page: 1, Limit: 12, Sort: "name"}, "invalid sort"},
		{"price range", usecase.ListProductsInput{Page: 1, Limit: 12, MinPrice: i64(10), MaxPrice: i64(5)}, "min_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ListProducts(ctx, tc.in)
			assertStatus(t, err, http.StatusBadRequest)
			assertErrContains(t, err, tc.want)
		})
	}
}

func TestGetProduct(t *testing.T) {
	products := &ProductRepoMock{}
	uc := usecase.NewProductUsecase(products, newTx(newTxReposMock()))

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Rice"}, nil)
	products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)

	p, err := uc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Rice", p.Name)

	_, err = uc.GetProduct(context.Background(), 2)
	assertStatus(t, err, http.StatusNotFound)

	_, err = uc.GetProduct(context.Background(), 0)
	assertStatus(t, err, http.StatusBadRequest)
}

func TestAdminCreateProduct_UnknownCategory(t *testing.T) {
	repos := newTxReposMock()
	uc := usecase.NewProductUsecase(repos.products, newTx(repos))

	repos.categories.On("FindByID", mock.Anything, int64(9)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.ProductInput{Name: "Rice", Price: 100, CategoryID: i64(9)})
	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "category not found")
	repos.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminCreateProduct_FirstImageBecomesMain(t *testing.T) {
	repos := newTxReposMock()
	uc := usecase.NewProductUsecase(repos.products, newTx(repos))

	repos.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Rice" && p.ImageURL == "/uploads/a.png" && len(p.Images) == 2
	})).Return(model.Product{ID: 5, Name: "Rice", ImageURL: "/uploads/a.png"}, nil)
	repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct && l.ResourceID == 5 && l.BeforeJSON == ""
	})).Return(nil)

	p, err := uc.AdminCreateProduct(context.Background(), 1, usecase.ProductInput{
		Name: " Rice ", Price: 100, Images: []string{"/uploads/a.png", "/uploads/b.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	repos.auditLogs.AssertExpectations(t)
}

func TestAdminCreateProduct_Validation(t *testing.T) {
	repos := newTxReposMock()
	uc := usecase.NewProductUsecase(repos.products, newTx(repos))
	ctx := context.Background()

	_, err := uc.AdminCreateProduct(ctx, 1, usecase.ProductInput{Name: "", Price: 1})
	assertErrContains(t, err, "name required")
	_, err = uc.AdminCreateProduct(ctx, 1, usecase.ProductInput{Name: "x", Price: -1})
	assertErrContains(t, err, "price")
	_, err = uc.AdminCreateProduct(ctx, 1, usecase.ProductInput{Name: "x", Stock: -1})
	assertErrContains(t, err, "stock")
}

func TestAdminUpdateProduct_NotFound(t *testing.T) {
	repos := newTxReposMock()
	uc := usecase.NewProductUsecase(repos.products, newTx(repos))

	repos.products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AdminUpdateProduct(context.Background(), 1, 5, usecase.ProductInput{Name: "Rice"})
	assertStatus(t, err, http.StatusNotFound)
}

func TestAdminDeleteProduct(t *testing.T) {
	repos := newTxReposMock()
	uc := usecase.NewProductUsecase(repos.products, newTx(repos))

	repos.products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{ID: 5, Name: "Rice"}, nil)
	repos.products.On("SoftDelete", mock.Anything, int64(5)).Return(nil)
	repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteProduct && l.AfterJSON == ""
	})).Return(nil)

	require.NoError(t, uc.AdminDeleteProduct(context.Background(), 1, 5))
	repos.products.AssertExpectations(t)
}

func TestAdminUpdateInventory_RecordsAdjustment(t *testing.T) {
	repos := newTxReposMock()
	uc := usecase.NewProductUsecase(repos.products, newTx(repos))

	repos.products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{ID: 5, Stock: 3}, nil)
	repos.inventory.On("SetStock", mock.Anything, int64(5), int64(10)).Return(nil)
	repos.inventory.On("RecordAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 5 && a.AdminUserID == 1 && a.Delta == 7 && a.StockBefore == 3 && a.StockAfter == 10 && a.Reason == "manual adjustment"
	})).Return(nil)
	repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.BeforeJSON == `{"stock":3}` && l.AfterJSON == `{"stock":10}`
	})).Return(nil)

	p, err := uc.AdminUpdateInventory(context.Background(), 1, 5, usecase.AdminUpdateInventoryInput{Stock: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)
	repos.inventory.AssertExpectations(t)
	repos.auditLogs.AssertExpectations(t)

	_, err = uc.AdminUpdateInventory(context.Background(), 1, 5, usecase.AdminUpdateInventoryInput{Stock: -1})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestAdminListLowStock_DefaultThreshold(t *testing.T) {
	products := &ProductRepoMock{}
	uc := usecase.NewProductUsecase(products, newTx(newTxReposMock()))

	products.On("ListLowStock", mock.Anything, int64(10), pagination.MaxLimit).Return([]model.Product{{ID: 1, Stock: 2}}, nil)

	items, err := uc.AdminListLowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = uc.AdminListLowStock(context.Background(), -3)
	assertStatus(t, err, http.StatusBadRequest)
}
