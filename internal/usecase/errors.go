package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/pagination"
)

// HTTPError はhandlerでそのままレスポンスにするエラー。
// Causeはログ用でクライアントには返さない
type HTTPError struct {
	Status  int
	Message string
	Cause   error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func WrapHTTPError(status int, message string, cause error) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 500
func dbError(err error) error {
	return WrapHTTPError(http.StatusInternalServerError, "db error", err)
}

func pageParams(page, limit int) (pagination.Params, error) {
	p, err := pagination.New(page, limit)
	if err != nil {
		return pagination.Params{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, nil
}

// tx内で返したHTTPErrorはそのまま、それ以外は500に包む
func txError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(err)
}
