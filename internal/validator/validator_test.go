package validator

import (
	"context"
	"testing"

	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"required,slug"`
}

type cartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"gte=0"`
}

func assertBadRequest(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, msg, he.Message)
}

func TestRequestValidator_UsesJSONNames(t *testing.T) {
	rv := New()

	assertBadRequest(t, rv.Validate(&categoryRequest{Slug: "fruits"}), "name is required")
	assertBadRequest(t, rv.Validate(&cartRequest{Quantity: 1}), "product_id is required")
	assertBadRequest(t, rv.Validate(&cartRequest{ProductID: 1, Quantity: -1}), "quantity must be >= 0")
}

func TestRequestValidator_Slug(t *testing.T) {
	rv := New()

	for _, ok := range []string{"fruits", "fresh-fruits", "a1-b2-c3"} {
		assert.NoError(t, rv.Validate(&categoryRequest{Name: "x", Slug: ok}), ok)
	}
	for _, bad := range []string{"Fruits", "fresh--fruits", "-fruits", "fruits-", "fresh fruits"} {
		assertBadRequest(t, rv.Validate(&categoryRequest{Name: "x", Slug: bad}), "slug must be lowercase words separated by hyphens")
	}
}

func TestAuthValidator(t *testing.T) {
	v := NewAuthValidator(New())
	ctx := context.Background()

	assert.NoError(t, v.ValidateRegister(ctx, "a@example.com", "password1"))
	assertBadRequest(t, v.ValidateRegister(ctx, "", "password1"), "email is required")
	assertBadRequest(t, v.ValidateRegister(ctx, "not-an-email", "password1"), "email must be a valid email")
	assertBadRequest(t, v.ValidateRegister(ctx, "a@example.com", "short"), "password must be at least 8 characters")

	assert.NoError(t, v.ValidateLogin(ctx, "a@example.com", "x"))
	assertBadRequest(t, v.ValidateLogin(ctx, "a@example.com", ""), "password is required")

	assert.NoError(t, v.ValidatePasswordChange(ctx, "oldpassword", "newpassword"))
	assertBadRequest(t, v.ValidatePasswordChange(ctx, "samepassword", "samepassword"), "new_password must differ from current_password")
}
