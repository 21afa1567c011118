package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantBody  string
		wantCause bool
	}{
		{"http error", usecase.NewHTTPError(http.StatusConflict, "stock exceeded"), 409, `{"error":"stock exceeded"}`, false},
		{"db error hides cause", usecase.WrapHTTPError(http.StatusInternalServerError, "db error", errors.New("pq: boom")), 500, `{"error":"db error"}`, true},
		{"echo 4xx", echo.ErrUnsupportedMediaType, 415, `{"error":"Unsupported Media Type"}`, false},
		{"unknown", errors.New("boom"), 500, `{"error":"internal error"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("/")
			require.NoError(t, writeError(c, tt.err))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "boom")

			_, hasCause := c.Get(middleware.CtxErrorCauseKey).(error)
			assert.Equal(t, tt.wantCause, hasCause)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	c, _ := newContext("/?page=3&min_price=100&bad=x")

	page, err := queryInt(c, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	limit, err := queryInt(c, "limit", 12)
	require.NoError(t, err)
	assert.Equal(t, 12, limit)

	_, err = queryInt(c, "bad", 1)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "invalid bad", he.Message)

	lo, err := queryInt64Ptr(c, "min_price")
	require.NoError(t, err)
	require.NotNil(t, lo)
	assert.Equal(t, int64(100), *lo)

	hi, err := queryInt64Ptr(c, "max_price")
	require.NoError(t, err)
	assert.Nil(t, hi)
}

func TestPathID(t *testing.T) {
	for _, v := range []string{"0", "-1", "abc", ""} {
		c, _ := newContext("/")
		c.SetParamNames("id")
		c.SetParamValues(v)
		_, err := pathID(c, "id")
		assert.Error(t, err, v)
	}

	c, _ := newContext("/")
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestHealth(t *testing.T) {
	ok := PingFunc(func(ctx context.Context) error { return nil })
	down := PingFunc(func(ctx context.Context) error { return errors.New("refused") })

	tests := []struct {
		name      string
		db, redis Pinger
		wantCode  int
		wantRedis string
	}{
		{"db only", ok, nil, http.StatusOK, "disabled"},
		{"db and redis", ok, ok, http.StatusOK, "ok"},
		{"redis down", ok, down, http.StatusServiceUnavailable, "down"},
		{"db down", down, nil, http.StatusServiceUnavailable, "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			NewHealthHandler(tt.db, tt.redis).RegisterRoutes(e)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantRedis, body["redis"])
		})
	}
}
