package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	auditapp "coupon-server/internal/application/audit"
	couponapp "coupon-server/internal/application/coupon"
	importapp "coupon-server/internal/application/coupon_import"
	exportapp "coupon-server/internal/application/export"
	redemptionapp "coupon-server/internal/application/redemption"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
	"coupon-server/internal/infrastructure/observability/prom"
	restmiddleware "coupon-server/internal/presentation/rest/middleware"
)

// testDeps ハンドラーテスト用の依存関係
type testDeps struct {
	couponRepo *MockCouponRepository
	auditRepo  *MockAuditLogRepository
	txManager  *MockTransactionManager
	store      *memoryArtifactStore
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	collectors *prom.Collectors
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)
	return &testDeps{
		couponRepo: new(MockCouponRepository),
		auditRepo:  new(MockAuditLogRepository),
		txManager:  new(MockTransactionManager),
		store:      newMemoryArtifactStore(),
		logger:     otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"), nil),
		metrics:    metrics,
		collectors: prom.NewCollectors(),
	}
}

func (d *testDeps) couponHandler() *CouponHandler {
	return NewCouponHandler(
		couponapp.NewCouponApplicationService(d.couponRepo, d.auditRepo, d.txManager, d.logger, d.metrics, d.collectors),
		exportapp.NewExportApplicationService(d.couponRepo, d.logger, d.metrics, d.collectors),
	)
}

func (d *testDeps) redemptionHandler() *RedemptionHandler {
	return NewRedemptionHandler(
		redemptionapp.NewRedemptionApplicationService(d.couponRepo, d.auditRepo, d.txManager, d.logger, d.metrics, d.collectors),
	)
}

func (d *testDeps) importHandler() *ImportHandler {
	return NewImportHandler(
		importapp.NewCouponImportApplicationService(d.couponRepo, d.auditRepo, d.txManager, d.store, d.logger, d.metrics, d.collectors),
	)
}

func (d *testDeps) auditHandler() *AuditHandler {
	return NewAuditHandler(auditapp.NewAuditApplicationService(d.auditRepo, d.logger))
}

// serve エラーハンドラーを通してハンドラーを実行する
func (d *testDeps) serve(t *testing.T, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := restmiddleware.ErrorHandlerMiddleware(d.logger)(h)(c)
	require.NoError(t, err)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
