package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

type AdminOrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	recorder OrderRecorder
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, recorder OrderRecorder) *AdminOrderUsecase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AdminOrderUsecase{tx: tx, orders: orders, recorder: recorder}
}

type AdminListOrdersInput struct {
	ListOrdersInput
	UserID *int64
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（全ユーザー）
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminListOrdersInput) (pagination.Page[OrderOutput], error) {
	if in.UserID != nil && *in.UserID <= 0 {
		return pagination.Page[OrderOutput]{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	return listOrders(ctx, u.orders, in.UserID, in.ListOrdersInput)
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	return toOrderOutput(o), nil
}

// ステータス更新。顧客がロックしている注文は変更できない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.Status))
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		out       OrderOutput
		cancelled bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return dbError(err)
		}

		if o.IsLocked {
			return NewHTTPError(http.StatusForbidden, "order is locked by customer")
		}
		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			out = toOrderOutput(o)
			return nil
		}
		// 終端ガード
		if o.Status == model.OrderStatusDelivered {
			return NewHTTPError(http.StatusBadRequest, "cannot change delivered order")
		}

		switch {
		case newStatus == model.OrderStatusCancelled:
			if err := restoreStock(ctx, r, o.Items); err != nil {
				return err
			}
			cancelled = true
		case o.Status == model.OrderStatusCancelled:
			// キャンセルから戻すときは在庫を取り直す
			if err := reserveStock(ctx, r, o.Items); err != nil {
				return err
			}
		}

		if err := r.Orders().UpdateState(ctx, orderID, newStatus, o.IsLocked); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return dbError(err)
		}

		before := map[string]string{"status": string(o.Status)}
		after := map[string]string{"status": string(newStatus)}
		if err := writeAudit(ctx, r, actorAdminUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID, before, after); err != nil {
			return err
		}

		o.Status = newStatus
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError(err)
	}

	if cancelled {
		u.recorder.OrderCancelled()
	}
	return out, nil
}
