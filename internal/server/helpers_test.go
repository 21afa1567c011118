package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/config"
	"github.com/hamiddiallo/ecommerce/internal/infra/db/dbtest"
	"github.com/hamiddiallo/ecommerce/internal/infra/storage"
	"github.com/hamiddiallo/ecommerce/internal/logger"
	"github.com/hamiddiallo/ecommerce/internal/metrics"
	"github.com/hamiddiallo/ecommerce/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass-1"
	userPassword  = "user-pass-1"
)

type TestClient struct {
	t *testing.T
	h http.Handler
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		Port:            "0",
		GoEnv:           config.EnvDev,
		JWTSecret:       "test-secret",
		JWTAccessTTL:    15 * time.Minute,
		AdminEmail:      adminEmail,
		AdminPassword:   adminPassword,
		CheckoutLockTTL: 10 * time.Second,
		UploadDir:       dir,
		UploadMaxBytes:  1 << 20,
		CORSOrigins:     []string{"*"},
	}

	gdb := dbtest.New(t)
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	s := server.New(cfg, logger.Nop(), server.Deps{
		DB:       gdb,
		Storage:  local,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	require.NoError(t, s.EnsureAdmin(context.Background()))

	return &TestClient{t: t, h: s.Echo()}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int64  `json:"token_version"`
}

type AuthLoginResponse struct {
	User  UserDTO `json:"user"`
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
}

type Product struct {
	ID         int64  `json:"id"`
	CategoryID *int64 `json:"category_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Stock      int64  `json:"stock"`
}

type Cart struct {
	Items []struct {
		ID        int64 `json:"id"`
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	} `json:"items"`
	Total int64 `json:"total"`
	Count int64 `json:"count"`
}

type Order struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	Total    int64  `json:"total"`
	IsLocked bool   `json:"is_locked"`
	Items    []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	} `json:"items"`
}

type Page[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalPages int   `json:"totalPages"`
	} `json:"meta"`
}

func (c *TestClient) do(req *http.Request, bearer string) *httptest.ResponseRecorder {
	c.t.Helper()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func (c *TestClient) doJSON(method, path, bearer string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reqBody = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return c.do(req, bearer)
}

func (c *TestClient) upload(path, bearer, filename string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = fw.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, bearer)
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func mustDecode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, rec.Body.String())
	}
	return v
}

func (c *TestClient) login(email, password string) string {
	c.t.Helper()
	rec := c.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	requireStatus(c.t, rec, http.StatusOK)
	return mustDecode[AuthLoginResponse](c.t, rec).Token.AccessToken
}

func (c *TestClient) adminToken() string {
	return c.login(adminEmail, adminPassword)
}

// 会員登録してアクセストークンを返す
func (c *TestClient) newUser(email string) string {
	c.t.Helper()
	rec := c.doJSON(http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": userPassword})
	requireStatus(c.t, rec, http.StatusCreated)
	return c.login(email, userPassword)
}

func (c *TestClient) createCategory(admin, name, slug string) int64 {
	c.t.Helper()
	rec := c.doJSON(http.MethodPost, "/api/categories", admin, map[string]string{"name": name, "slug": slug})
	requireStatus(c.t, rec, http.StatusCreated)
	return mustDecode[struct {
		ID int64 `json:"id"`
	}](c.t, rec).ID
}

func (c *TestClient) createProduct(admin string, categoryID *int64, name string, price, stock int64) Product {
	c.t.Helper()
	rec := c.doJSON(http.MethodPost, "/api/products", admin, map[string]any{
		"category_id": categoryID,
		"name":        name,
		"price":       price,
		"unit":        "kg",
		"stock":       stock,
	})
	requireStatus(c.t, rec, http.StatusCreated)
	return mustDecode[Product](c.t, rec)
}

func (c *TestClient) product(id int64) Product {
	c.t.Helper()
	rec := c.doJSON(http.MethodGet, "/api/products/"+itoa(id), "", nil)
	requireStatus(c.t, rec, http.StatusOK)
	return mustDecode[Product](c.t, rec)
}

func (c *TestClient) addToCart(token string, productID, qty int64) *httptest.ResponseRecorder {
	return c.doJSON(http.MethodPost, "/api/cart", token, map[string]int64{"product_id": productID, "quantity": qty})
}

func shipping() map[string]string {
	return map[string]string{
		"full_name":        "Aminata Diallo",
		"phone":            "+224 620 00 00 00",
		"shipping_address": "Rue KA-020",
		"city":             "Conakry",
	}
}

func (c *TestClient) checkout(token string, headers ...string) *httptest.ResponseRecorder {
	return c.doJSON(http.MethodPost, "/api/orders", token, shipping(), headers...)
}
