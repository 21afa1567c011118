package validator

import (
	"context"
	"net/http"
	"strings"

	"github.com/hamiddiallo/ecommerce/internal/usecase"
)

const minPasswordLength = 8

type authValidator struct {
	rv *RequestValidator
}

// Usecaseは interface を依存注入
func NewAuthValidator(rv *RequestValidator) usecase.AuthValidator {
	return &authValidator{rv: rv}
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	if err := v.validateEmail(email); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return invalid("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return invalid("password must be at most 72 characters")
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if err := v.validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return invalid("password is required")
	}
	return nil
}

func (v *authValidator) ValidatePasswordChange(ctx context.Context, current string, next string) error {
	if current == "" {
		return invalid("current_password is required")
	}
	if len(next) < minPasswordLength {
		return invalid("new_password must be at least 8 characters")
	}
	if len(next) > 72 {
		return invalid("new_password must be at most 72 characters")
	}
	if current == next {
		return invalid("new_password must differ from current_password")
	}
	return nil
}

func (v *authValidator) validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email is required")
	}
	if err := v.rv.Var(email, "email,max=255"); err != nil {
		return invalid("email must be a valid email")
	}
	return nil
}
