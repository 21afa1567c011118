package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

// CheckoutGuard はユーザーごとのチェックアウトを直列にする。
// 取れなかった場合は ok=false
type CheckoutGuard interface {
	Acquire(ctx context.Context, userID int64) (release func(), ok bool, err error)
}

// OrderRecorder は注文の件数を記録する（メトリクス）
type OrderRecorder interface {
	OrderPlaced()
	OrderCancelled()
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced()    {}
func (nopRecorder) OrderCancelled() {}

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	guard    CheckoutGuard
	recorder OrderRecorder
}

// guard / recorder は nil 可
func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, guard CheckoutGuard, recorder OrderRecorder) *OrderUsecase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &OrderUsecase{tx: tx, orders: orders, guard: guard, recorder: recorder}
}

type PlaceOrderInput struct {
	FullName        string
	Phone           string
	ShippingAddress string
	City            string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"product_name"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int64  `json:"quantity"`
	TotalPrice int64  `json:"total_price"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	Total           int64             `json:"total"`
	FullName        string            `json:"full_name"`
	Phone           string            `json:"phone"`
	ShippingAddress string            `json:"shipping_address"`
	City            string            `json:"city"`
	IsLocked        bool              `json:"is_locked"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Items           []OrderItemOutput `json:"items"`
}

func (in PlaceOrderInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return NewHTTPError(http.StatusBadRequest, "full_name required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping_address required")
	}
	if len(strings.TrimSpace(in.IdempotencyKey)) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	return nil
}

// カートから注文を作る。在庫減算・明細作成・カート削除まで1トランザクション
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return OrderOutput{}, err
	}

	if u.guard != nil {
		release, ok, err := u.guard.Acquire(ctx, userID)
		if err != nil {
			return OrderOutput{}, WrapHTTPError(http.StatusInternalServerError, "internal error", err)
		}
		if !ok {
			return OrderOutput{}, NewHTTPError(http.StatusConflict, "checkout already in progress")
		}
		defer release()
	}

	var (
		out      OrderOutput
		replayed bool
	)
	key := strings.TrimSpace(in.IdempotencyKey)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return dbError(err)
			}
			if found {
				out = toOrderOutput(existing)
				replayed = true
				return nil
			}
		}

		cartItems, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		// 先に全行を検証してから書き込む
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var total int64
		for _, ci := range cartItems {
			p := ci.Product
			if p.ID == 0 {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %d is no longer available", ci.ProductID))
			}
			if ci.Quantity > p.Stock {
				return NewHTTPError(http.StatusBadRequest, "insufficient stock for "+p.Name)
			}
			line := p.Price * ci.Quantity
			orderItems = append(orderItems, model.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    ci.Quantity,
				TotalPrice:  line,
			})
			total += line
		}

		order := model.Order{
			UserID:          userID,
			Total:           total,
			Status:          model.OrderStatusPending,
			FullName:        strings.TrimSpace(in.FullName),
			Phone:           strings.TrimSpace(in.Phone),
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			City:            strings.TrimSpace(in.City),
			IsLocked:        false,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		created, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicate) {
			return NewHTTPError(http.StatusConflict, "duplicate idempotency_key")
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.OrderItems().InsertForOrder(ctx, created.ID, orderItems); err != nil {
			return dbError(err)
		}

		// 検証後に他の注文で減っている可能性があるので条件付きで減らす
		for _, it := range orderItems {
			ok, err := r.Inventory().TakeStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return dbError(err)
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock for "+it.ProductName)
			}
		}

		if err := r.CartItems().ClearByUserID(ctx, userID); err != nil {
			return dbError(err)
		}

		created.Items = orderItems
		out = toOrderOutput(created)
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError(err)
	}

	if !replayed {
		u.recorder.OrderPlaced()
	}
	return out, nil
}

type ListOrdersInput struct {
	Page   int
	Limit  int
	Status string
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, in ListOrdersInput) (pagination.Page[OrderOutput], error) {
	if userID <= 0 {
		return pagination.Page[OrderOutput]{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return listOrders(ctx, u.orders, &userID, in)
}

func listOrders(ctx context.Context, orders repo.OrderRepository, userID *int64, in ListOrdersInput) (pagination.Page[OrderOutput], error) {
	p, err := pageParams(in.Page, in.Limit)
	if err != nil {
		return pagination.Page[OrderOutput]{}, err
	}
	status := strings.TrimSpace(in.Status)
	if status != "" {
		if _, ok := model.ParseOrderStatus(status); !ok {
			return pagination.Page[OrderOutput]{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	list, total, err := orders.List(ctx, repo.OrderListFilter{Page: p, Status: status, UserID: userID})
	if err != nil {
		return pagination.Page[OrderOutput]{}, dbError(err)
	}
	outs := make([]OrderOutput, 0, len(list))
	for _, o := range list {
		outs = append(outs, toOrderOutput(o))
	}
	return pagination.NewPage(outs, p, total), nil
}

// 他人の注文は404
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && o.UserID != userID) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	return toOrderOutput(o), nil
}

// 顧客キャンセル。pending/confirmedのみ。在庫を戻してロックする
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CustomerCancellable() {
			return NewHTTPError(http.StatusBadRequest, "cannot cancel order in status "+string(o.Status))
		}

		if err := restoreStock(ctx, r, o.Items); err != nil {
			return err
		}
		if err := r.Orders().UpdateState(ctx, o.ID, model.OrderStatusCancelled, true); err != nil {
			return dbError(err)
		}

		o.Status = model.OrderStatusCancelled
		o.IsLocked = true
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError(err)
	}

	u.recorder.OrderCancelled()
	return out, nil
}

// 顧客がロックを外す。ロックされていなければ400
func (u *OrderUsecase) UnlockOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if !o.IsLocked {
			return NewHTTPError(http.StatusBadRequest, "order is not locked")
		}
		if err := r.Orders().UpdateState(ctx, o.ID, o.Status, false); err != nil {
			return dbError(err)
		}
		o.IsLocked = false
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError(err)
	}
	return out, nil
}

// 所有者以外は403
func findOwnedOrder(ctx context.Context, r repo.TxRepos, userID, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, dbError(err)
	}
	if o.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return o, nil
}

// 明細分の在庫を戻す。削除済み商品はスキップ
func restoreStock(ctx context.Context, r repo.TxRepos, items []model.OrderItem) error {
	for _, it := range items {
		err := r.Inventory().RestoreStock(ctx, it.ProductID, it.Quantity)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return dbError(err)
		}
	}
	return nil
}

// 明細分の在庫を再確保する。足りなければ409
func reserveStock(ctx context.Context, r repo.TxRepos, items []model.OrderItem) error {
	for _, it := range items {
		ok, err := r.Inventory().TakeStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return dbError(err)
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "insufficient stock for "+it.ProductName)
		}
	}
	return nil
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID:  it.ProductID,
			Name:       it.ProductName,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			TotalPrice: it.TotalPrice,
		})
	}
	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		Total:           o.Total,
		FullName:        o.FullName,
		Phone:           o.Phone,
		ShippingAddress: o.ShippingAddress,
		City:            o.City,
		IsLocked:        o.IsLocked,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           items,
	}
}
