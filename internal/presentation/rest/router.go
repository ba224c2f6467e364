package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	auditapp "coupon-server/internal/application/audit"
	couponapp "coupon-server/internal/application/coupon"
	importapp "coupon-server/internal/application/coupon_import"
	exportapp "coupon-server/internal/application/export"
	redemptionapp "coupon-server/internal/application/redemption"
	"coupon-server/internal/infrastructure/config"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
	"coupon-server/internal/infrastructure/observability/prom"
	"coupon-server/internal/presentation/rest/handler"
	restmiddleware "coupon-server/internal/presentation/rest/middleware"
)

// HealthChecker ヘルスチェック対象
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Services ルーターが公開するアプリケーションサービス
type Services struct {
	Coupon     *couponapp.CouponApplicationService
	Redemption *redemptionapp.RedemptionApplicationService
	Import     *importapp.CouponImportApplicationService
	Export     *exportapp.ExportApplicationService
	Audit      *auditapp.AuditApplicationService
}

// Router REST APIルーター
type Router struct {
	echo              *echo.Echo
	cfg               *config.Config
	couponHandler     *handler.CouponHandler
	redemptionHandler *handler.RedemptionHandler
	importHandler     *handler.ImportHandler
	auditHandler      *handler.AuditHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	collectors *prom.Collectors,
	health HealthChecker,
	services *Services,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	r := &Router{
		echo:              e,
		cfg:               cfg,
		couponHandler:     handler.NewCouponHandler(services.Coupon, services.Export),
		redemptionHandler: handler.NewRedemptionHandler(services.Redemption),
		importHandler:     handler.NewImportHandler(services.Import),
		auditHandler:      handler.NewAuditHandler(services.Audit),
	}

	r.setupMiddleware(logger, metrics)
	r.setupRoutes(logger, collectors, health)
	SetupSwagger(e)

	return r, nil
}

// setupMiddleware ミドルウェアを設定
func (r *Router) setupMiddleware(logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e := r.echo

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, restmiddleware.APIKeyHeader},
	}))
	e.Use(restmiddleware.TracingMiddleware())
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.MetricsMiddleware(metrics))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))

	// 上限超過のエラーもErrorHandlerMiddlewareで整形する
	if limit := r.cfg.Import.MaxUploadSize; limit != "" {
		e.Use(middleware.BodyLimit(limit))
	}
}

// setupRoutes ルーティングを設定
func (r *Router) setupRoutes(logger *otelinfra.Logger, collectors *prom.Collectors, health HealthChecker) {
	e := r.echo

	e.GET("/health", func(c echo.Context) error {
		if health != nil {
			if err := health.HealthCheck(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if r.cfg.Metrics.Enabled {
		e.GET(r.cfg.Metrics.Path, echo.WrapHandler(collectors.Handler()))
	}

	api := e.Group("/api/v1")

	// 利用者向けの利用確認・利用記録は常に開放
	api.POST("/redemptions/validate", r.redemptionHandler.Validate)
	api.POST("/redemptions/mark", r.redemptionHandler.Mark)

	admin := api.Group("", restmiddleware.APIKeyMiddleware(&r.cfg.AdminAPI, logger))
	admin.POST("/coupons", r.couponHandler.Register)
	admin.GET("/coupons", r.couponHandler.List)
	admin.POST("/coupons/check", r.couponHandler.Check)
	admin.GET("/coupons/export", r.couponHandler.Export)
	admin.POST("/imports", r.importHandler.Stage)
	admin.POST("/imports/confirm", r.importHandler.Confirm)
	admin.GET("/imports/batches/:id", r.importHandler.GetBatch)
	admin.GET("/imports/errors/:id", r.importHandler.GetErrorReport)
	admin.GET("/logs", r.auditHandler.ListLogs)
	admin.GET("/dashboard", r.couponHandler.Dashboard)

	// 旧クライアント向けの互換ルート
	legacy := e.Group("/api")
	legacy.POST("/redeem_validate", r.redemptionHandler.Validate)
	legacy.POST("/redeem_mark", r.redemptionHandler.Mark)
	legacy.POST("/validate_coupon", r.couponHandler.Check, restmiddleware.APIKeyMiddleware(&r.cfg.AdminAPI, logger))
}

// Start サーバーを起動
func (r *Router) Start() error {
	s := r.echo.Server
	s.ReadTimeout = r.cfg.Server.ReadTimeout
	s.WriteTimeout = r.cfg.Server.WriteTimeout
	s.IdleTimeout = r.cfg.Server.IdleTimeout
	return r.echo.Start(fmt.Sprintf(":%d", r.cfg.Server.Port))
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}

// ServeHTTP http.Handlerとして振る舞う
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}
