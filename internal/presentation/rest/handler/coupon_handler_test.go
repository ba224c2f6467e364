package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coupon-server/internal/domain/coupon"
	"coupon-server/internal/infrastructure/spreadsheet"
)

func TestCouponHandler_Register(t *testing.T) {
	tests := []struct {
		name             string
		body             interface{}
		setupMock        func(*MockCouponRepository, *MockAuditLogRepository, *MockTransactionManager)
		expectedStatus   int
		validateResponse func(*testing.T, map[string]interface{})
	}{
		{
			name: "正常系: 数値項目をJSON数値で指定",
			body: map[string]interface{}{
				"code":            "A10",
				"issued_at":       "2026-10-01 09:00",
				"validity_value":  5,
				"validity_unit":   "days",
				"max_redemptions": 3,
			},
			setupMock: func(cr *MockCouponRepository, ar *MockAuditLogRepository, tm *MockTransactionManager) {
				tm.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
				cr.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(c *coupon.Coupon) bool {
					return c.Code() == "A10" && c.MaxRedemptions() == 3 && c.ValidityValue() == 5
				})).Return(nil)
				ar.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
			validateResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "A10", body["code"])
				assert.Equal(t, "2026-10-01 09:00", body["valid_from"])
				assert.Equal(t, "2026-10-06 09:00", body["valid_to"])
				assert.Equal(t, float64(0), body["redeemed_count"])
			},
		},
		{
			name: "異常系: 単位が不正",
			body: map[string]interface{}{"code": "A10", "validity_unit": "weeks"},
			setupMock: func(cr *MockCouponRepository, ar *MockAuditLogRepository, tm *MockTransactionManager) {
			},
			expectedStatus: http.StatusBadRequest,
			validateResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "invalid_validity_unit", body["code"])
			},
		},
		{
			name: "異常系: コード重複",
			body: map[string]interface{}{"code": "A10"},
			setupMock: func(cr *MockCouponRepository, ar *MockAuditLogRepository, tm *MockTransactionManager) {
				tm.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
				cr.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(coupon.ErrCodeAlreadyExists)
			},
			expectedStatus: http.StatusConflict,
			validateResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "duplicate_code", body["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t)
			tt.setupMock(deps.couponRepo, deps.auditRepo, deps.txManager)

			rec := deps.serve(t, deps.couponHandler().Register, jsonRequest(t, http.MethodPost, "/api/v1/coupons", tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.validateResponse(t, decodeBody(t, rec))
		})
	}
}

func TestCouponHandler_Check(t *testing.T) {
	tests := []struct {
		name             string
		body             interface{}
		setupMock        func(*MockCouponRepository)
		expectedStatus   int
		validateResponse func(*testing.T, map[string]interface{})
	}{
		{
			name: "正常系: 未登録のコード",
			body: map[string]interface{}{"code": "NEW", "validity_value": "2", "validity_unit": "hours"},
			setupMock: func(m *MockCouponRepository) {
				m.On("ExistsByCode", mock.Anything, "NEW").Return(false, nil)
			},
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, true, body["ok"])
				assert.Equal(t, false, body["code_exists"])
				assert.Equal(t, "Active", body["status"])
				assert.NotEmpty(t, body["valid_to"])
			},
		},
		{
			name: "正常系: 登録済みのコード",
			body: map[string]interface{}{"code": "OLD"},
			setupMock: func(m *MockCouponRepository) {
				m.On("ExistsByCode", mock.Anything, "OLD").Return(true, nil)
			},
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, false, body["ok"])
				assert.Equal(t, true, body["code_exists"])
				assert.Equal(t, "Coupon code 'OLD' already exists.", body["message"])
			},
		},
		{
			name:           "異常系: コードが空",
			body:           map[string]interface{}{},
			setupMock:      func(m *MockCouponRepository) {},
			expectedStatus: http.StatusBadRequest,
			validateResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, false, body["ok"])
				assert.Equal(t, "Missing coupon code.", body["message"])
				assert.Nil(t, body["status"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t)
			tt.setupMock(deps.couponRepo)

			rec := deps.serve(t, deps.couponHandler().Check, jsonRequest(t, http.MethodPost, "/api/v1/coupons/check", tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.validateResponse(t, decodeBody(t, rec))
		})
	}
}

func TestCouponHandler_List(t *testing.T) {
	now := time.Now()
	deps := newTestDeps(t)
	deps.couponRepo.On("FindAll", mock.Anything).Return([]*coupon.Coupon{
		testCoupon("A10", now.Add(-time.Hour), now.Add(time.Hour), 0, 1),
	}, nil)

	rec := deps.serve(t, deps.couponHandler().List, httptest.NewRequest(http.MethodGet, "/api/v1/coupons", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total"])
	coupons, ok := body["coupons"].([]interface{})
	require.True(t, ok)
	require.Len(t, coupons, 1)
	assert.Equal(t, "Active", coupons[0].(map[string]interface{})["status"])
}

func TestCouponHandler_Export(t *testing.T) {
	now := time.Now()

	t.Run("正常系: xlsxをダウンロード", func(t *testing.T) {
		deps := newTestDeps(t)
		deps.couponRepo.On("FindAll", mock.Anything).Return([]*coupon.Coupon{
			testCoupon("A10", now.Add(-time.Hour), now.Add(time.Hour), 0, 1),
		}, nil)

		rec := deps.serve(t, deps.couponHandler().Export, httptest.NewRequest(http.MethodGet, "/api/v1/coupons/export", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, MIMEXLSX, rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "coupons_export_")

		table, err := spreadsheet.Read(spreadsheet.FileKindXLSX, rec.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, table.Rows(), 1)
		assert.Equal(t, "A10", table.Rows()[0].Value("code"))
	})

	t.Run("異常系: 読み込みに失敗", func(t *testing.T) {
		deps := newTestDeps(t)
		deps.couponRepo.On("FindAll", mock.Anything).Return(nil, errors.New("db down"))

		rec := deps.serve(t, deps.couponHandler().Export, httptest.NewRequest(http.MethodGet, "/api/v1/coupons/export", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCouponHandler_Dashboard(t *testing.T) {
	now := time.Now()
	deps := newTestDeps(t)
	deps.couponRepo.On("FindAll", mock.Anything).Return([]*coupon.Coupon{
		testCoupon("SOON", now.Add(-time.Hour), now.Add(2*time.Hour), 0, 1),
		testCoupon("LATER", now.Add(-time.Hour), now.Add(72*time.Hour), 0, 1),
	}, nil)
	deps.auditRepo.On("CountByActionSince", mock.Anything, mock.Anything, mock.Anything).Return(4, nil)

	rec := deps.serve(t, deps.couponHandler().Dashboard, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["active"])
	assert.Equal(t, float64(1), body["expiring_24h"])
	assert.Equal(t, float64(4), body["redeemed_today"])
}
