package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "coupon-server/internal/application/audit"
	couponapp "coupon-server/internal/application/coupon"
	importapp "coupon-server/internal/application/coupon_import"
	exportapp "coupon-server/internal/application/export"
	redemptionapp "coupon-server/internal/application/redemption"
	"coupon-server/internal/infrastructure/config"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
	"coupon-server/internal/infrastructure/observability/prom"
	"coupon-server/internal/infrastructure/persistence/rdb"
	"coupon-server/internal/infrastructure/storage"
	"coupon-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	logger := otelinfra.NewLogger(otelinfra.Tracer(cfg.OpenTelemetry.ServiceName), &cfg.Log)
	metrics, err := otelinfra.NewMetrics(cfg.OpenTelemetry.ServiceName)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}
	collectors := prom.NewCollectors()

	ctx := context.Background()

	// データベース接続の初期化
	db, err := rdb.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 取り込み成果物の保存先
	store, redisClient, err := storage.NewArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// リポジトリの初期化
	couponRepo := rdb.NewCouponRepository(db)
	auditRepo := rdb.NewAuditLogRepository(db)
	txManager := rdb.NewTransactionManager(db)

	// アプリケーションサービスの初期化
	services := &rest.Services{
		Coupon:     couponapp.NewCouponApplicationService(couponRepo, auditRepo, txManager, logger, metrics, collectors),
		Redemption: redemptionapp.NewRedemptionApplicationService(couponRepo, auditRepo, txManager, logger, metrics, collectors),
		Import:     importapp.NewCouponImportApplicationService(couponRepo, auditRepo, txManager, store, logger, metrics, collectors),
		Export:     exportapp.NewExportApplicationService(couponRepo, logger, metrics, collectors),
		Audit:      auditapp.NewAuditApplicationService(auditRepo, logger),
	}

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, collectors, db, services)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info(ctx, "REST API server starting", map[string]interface{}{
			"port":          cfg.Server.Port,
			"environment":   cfg.Environment,
			"db_driver":     cfg.Database.Driver,
			"artifacts":     cfg.Artifacts.Backend,
			"admin_api_key": cfg.AdminAPI.Enabled,
		})
		if err := router.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "REST API server error", err, nil)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info(ctx, "Shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error shutting down REST API server", err, nil)
	}

	logger.Info(ctx, "Server stopped", nil)
}
