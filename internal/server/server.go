package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/config"
	"github.com/hamiddiallo/ecommerce/internal/handler"
	"github.com/hamiddiallo/ecommerce/internal/infra/cache"
	"github.com/hamiddiallo/ecommerce/internal/infra/db"
	infraRepo "github.com/hamiddiallo/ecommerce/internal/infra/repository"
	"github.com/hamiddiallo/ecommerce/internal/logger"
	"github.com/hamiddiallo/ecommerce/internal/metrics"
	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"
	"github.com/hamiddiallo/ecommerce/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Deps は外から渡す接続類。Redis / Metrics / Gatherer はnil可
type Deps struct {
	DB       *gorm.DB
	Redis    *cache.Client
	Storage  usecase.FileStorage
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	cfg  config.Config
	log  *logger.Logger
	e    *echo.Echo
	auth *usecase.AuthUsecase
}

// New はRepository → Usecase → Handler の順に組み立ててルートを登録する
func New(cfg config.Config, log *logger.Logger, d Deps) *Server {
	if log == nil {
		log = logger.Nop()
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(d.DB)
	productRepo := infraRepo.NewProductGormRepository(d.DB)
	categoryRepo := infraRepo.NewCategoryGormRepository(d.DB)
	cartRepo := infraRepo.NewCartGormRepository(d.DB)
	orderRepo := infraRepo.NewOrderGormRepository(d.DB)
	favoriteRepo := infraRepo.NewFavoriteGormRepository(d.DB)
	auditRepo := infraRepo.NewAuditLogGormRepository(d.DB)
	statsRepo := infraRepo.NewStatsGormRepository(d.DB)
	txm := infraRepo.NewTxManagerGorm(d.DB)

	var guard usecase.CheckoutGuard
	if d.Redis != nil {
		guard = cache.NewCheckoutGuard(d.Redis, cfg.CheckoutLockTTL)
	}
	var recorder usecase.OrderRecorder
	if d.Metrics != nil {
		recorder = d.Metrics
	}

	rv := validator.New()

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg.JWTSecret, cfg.JWTAccessTTL, userRepo, validator.NewAuthValidator(rv))
	productUC := usecase.NewProductUsecase(productRepo, txm)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, productRepo, txm)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, guard, recorder)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, recorder)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, productRepo)
	statsUC := usecase.NewAdminStatsUsecase(statsRepo, auditRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = rv
	e.HTTPErrorHandler = httpErrorHandler

	var observer middleware.RequestObserver
	if d.Metrics != nil {
		observer = d.Metrics
	}

	e.Use(middleware.RequestID(log))
	e.Use(middleware.RequestLogger(log, observer))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
			handler.HeaderLegacyIdempotencyKey,
			middleware.HeaderRequestID,
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	// multipartのヘッダー分を上乗せ
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dB", cfg.UploadMaxBytes+1<<20)))

	//Handler生成
	var redisPinger handler.Pinger
	if d.Redis != nil {
		redisPinger = d.Redis
	}
	handler.NewHealthHandler(handler.PingFunc(func(ctx context.Context) error {
		return db.Ping(ctx, d.DB)
	}), redisPinger).RegisterRoutes(e)

	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.UploadDir != "" {
		e.Static("/uploads", cfg.UploadDir)
	}

	api := e.Group("/api")
	guards := middleware.NewGuards(cfg.JWTSecret, userRepo)

	routes := []interface {
		RegisterRoutes(api *echo.Group, guards middleware.Guards)
	}{
		handler.NewAuthHandler(authUC),
		handler.NewProductHandler(productUC),
		handler.NewAdminProductHandler(productUC),
		handler.NewCategoryHandler(categoryUC),
		handler.NewCartHandler(cartUC),
		handler.NewOrderHandler(orderUC),
		handler.NewAdminOrderHandler(adminOrderUC),
		handler.NewFavoriteHandler(favoriteUC),
		handler.NewAdminHandler(statsUC),
		handler.NewAdminUserHandler(authUC),
	}
	if d.Storage != nil {
		routes = append(routes, handler.NewUploadHandler(usecase.NewUploadUsecase(d.Storage, cfg.UploadMaxBytes)))
	}
	for _, r := range routes {
		r.RegisterRoutes(api, guards)
	}

	return &Server{cfg: cfg, log: log, e: e, auth: authUC}
}

// Echo はテスト用
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// ADMIN_EMAIL/ADMIN_PASSWORDが設定されていれば管理者を用意する
func (s *Server) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	if err := s.auth.EnsureAdmin(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	s.log.Info(ctx, "admin user ready")
	return nil
}

// Start はctxがキャンセルされるまで待ち受け、その後graceful shutdownする
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoFields(ctx, "server.start", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info(shutdownCtx, "server.shutdown")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// echo由来のエラー(404/405/413など)も {"error": ...} で返す
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok && code < http.StatusInternalServerError {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		c.Set(middleware.CtxErrorCauseKey, err)
		msg = "internal error"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, handler.ErrorResponse{Error: msg})
}
