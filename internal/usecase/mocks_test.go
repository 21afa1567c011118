package usecase_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	cartItems  *CartItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	categories *CategoryRepoMock
	auditLogs  *AuditRepoMock
}

func newTxReposMock() *TxReposMock {
	return &TxReposMock{
		orders:     &OrderRepoMock{},
		orderItems: &OrderItemRepoMock{},
		cartItems:  &CartItemRepoMock{},
		inventory:  &InventoryRepoMock{},
		products:   &ProductRepoMock{},
		categories: &CategoryRepoMock{},
		auditLogs:  &AuditRepoMock{},
	}
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Categories() repo.CategoryRepository  { return r.categories }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

func newTx(repos *TxReposMock) *TxManagerMock {
	tx := &TxManagerMock{Repos: repos}
	tx.On("WithinTx", mock.Anything).Return()
	return tx
}

// =====================
// Repository mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepoMock) CountByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) ListLowStock(ctx context.Context, threshold int64, limit int) ([]model.Product, error) {
	args := m.Called(ctx, threshold, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Category)
	return out, args.Error(1)
}

func (m *CategoryRepoMock) Update(ctx context.Context, c model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CategoryRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) AddQuantity(ctx context.Context, userID, productID, qty int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, productID, qty)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CartItemRepoMock) ClearByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateState(ctx context.Context, orderID int64, status model.OrderStatus, locked bool) error {
	return m.Called(ctx, orderID, status, locked).Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) InsertForOrder(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *InventoryRepoMock) TakeStock(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) RestoreStock(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *InventoryRepoMock) RecordAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type FavoriteRepoMock struct{ mock.Mock }

func (m *FavoriteRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error) {
	args := m.Called(ctx, userID)
	fs, _ := args.Get(0).([]model.Favorite)
	return fs, args.Error(1)
}

func (m *FavoriteRepoMock) Create(ctx context.Context, f model.Favorite) (model.Favorite, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).(model.Favorite)
	return out, args.Error(1)
}

func (m *FavoriteRepoMock) Delete(ctx context.Context, userID, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *FavoriteRepoMock) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *UserRepoMock) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

type StatsRepoMock struct{ mock.Mock }

func (m *StatsRepoMock) Summary(ctx context.Context) (repo.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(repo.Stats)
	return s, args.Error(1)
}

func (m *StatsRepoMock) BestSellers(ctx context.Context, limit int) ([]repo.BestSeller, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]repo.BestSeller)
	return out, args.Error(1)
}

// =====================
// other collaborators
// =====================

type GuardMock struct {
	mock.Mock
	released int
}

func (m *GuardMock) Acquire(ctx context.Context, userID int64) (func(), bool, error) {
	args := m.Called(ctx, userID)
	return func() { m.released++ }, args.Bool(0), args.Error(1)
}

type RecorderMock struct {
	placed    int
	cancelled int
}

func (r *RecorderMock) OrderPlaced()    { r.placed++ }
func (r *RecorderMock) OrderCancelled() { r.cancelled++ }

type StorageMock struct {
	mock.Mock
	saved []byte
}

func (m *StorageMock) Save(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	m.saved = b
	args := m.Called(ctx, name, contentType)
	return args.String(0), args.Error(1)
}

// =====================
// helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "not HTTPError: %v", err)
	assert.Equal(t, status, he.Status, "message=%q", he.Message)
}
