package repository

import (
	"context"
	"testing"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/infra/db/dbtest"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.New(t)
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price, stock int64) model.Product {
	t.Helper()
	p, err := NewProductGormRepository(db).Create(context.Background(), model.Product{
		Name:  name,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func seedUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Role: model.RoleUser, IsActive: true}
	require.NoError(t, NewUserGormRepository(db).Create(context.Background(), &u))
	return u
}
