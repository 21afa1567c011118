package middleware

import (
	"github.com/hamiddiallo/ecommerce/internal/repository"

	"github.com/labstack/echo/v4"
)

// Guards はルートごとに付ける認可ミドルウェアの組
type Guards struct {
	// JWT必須 + token_version一致
	User []echo.MiddlewareFunc
	// User + ADMIN限定
	Admin []echo.MiddlewareFunc
}

func NewGuards(secret string, users repository.UserRepository) Guards {
	auth := AuthJWT(secret)
	tv := TokenVersionGuard(users)
	return Guards{
		User:  []echo.MiddlewareFunc{auth, tv},
		Admin: []echo.MiddlewareFunc{auth, tv, AdminRoleGuard()},
	}
}
