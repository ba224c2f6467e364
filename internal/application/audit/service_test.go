package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"coupon-server/internal/domain/audit_log"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
)

// MockAuditLogRepository モック監査ログリポジトリ
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Save(ctx context.Context, tx *sql.Tx, log *audit_log.AuditLog) error {
	args := m.Called(ctx, tx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindRecent(ctx context.Context, limit, offset int) ([]*audit_log.AuditLog, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit_log.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) CountByActionSince(ctx context.Context, action audit_log.Action, since time.Time) (int, error) {
	args := m.Called(ctx, action, since)
	return args.Int(0), args.Error(1)
}

func TestAuditApplicationService_ListLogs(t *testing.T) {
	loggedAt := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	logs := []*audit_log.AuditLog{
		audit_log.Reconstruct(2, loggedAt, "admin", audit_log.ActionRedeem, "A10", "Redeemed #1"),
		audit_log.Reconstruct(1, loggedAt.Add(-time.Hour), "admin", audit_log.ActionCreate, "A10", "created via register api"),
	}

	tests := []struct {
		name       string
		req        *ListLogsRequest
		setupMocks func(*MockAuditLogRepository)
		wantLimit  int
		wantOffset int
		wantCount  int
		wantError  bool
	}{
		{
			name: "正常系: 既定の件数で取得",
			req:  &ListLogsRequest{},
			setupMocks: func(m *MockAuditLogRepository) {
				m.On("FindRecent", mock.Anything, DefaultLimit, 0).Return(logs, nil)
			},
			wantLimit: DefaultLimit,
			wantCount: 2,
		},
		{
			name: "正常系: 上限を超える件数は切り詰める",
			req:  &ListLogsRequest{Limit: 10000, Offset: 20},
			setupMocks: func(m *MockAuditLogRepository) {
				m.On("FindRecent", mock.Anything, MaxLimit, 20).Return([]*audit_log.AuditLog{}, nil)
			},
			wantLimit:  MaxLimit,
			wantOffset: 20,
		},
		{
			name: "正常系: 負のオフセットは0",
			req:  &ListLogsRequest{Limit: 5, Offset: -3},
			setupMocks: func(m *MockAuditLogRepository) {
				m.On("FindRecent", mock.Anything, 5, 0).Return(logs, nil)
			},
			wantLimit: 5,
			wantCount: 2,
		},
		{
			name: "異常系: 取得に失敗",
			req:  &ListLogsRequest{},
			setupMocks: func(m *MockAuditLogRepository) {
				m.On("FindRecent", mock.Anything, DefaultLimit, 0).Return(nil, errors.New("db down"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAuditLogRepository)
			tt.setupMocks(repo)
			svc := NewAuditApplicationService(repo, otelinfra.NewLogger(otel.Tracer("test"), nil))

			got, err := svc.ListLogs(context.Background(), tt.req)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantLimit, got.Limit)
				assert.Equal(t, tt.wantOffset, got.Offset)
				assert.Len(t, got.Logs, tt.wantCount)
				if tt.wantCount > 0 {
					assert.Equal(t, int64(2), got.Logs[0].ID)
					assert.Equal(t, "redeem", got.Logs[0].Action)
				}
			}
			repo.AssertExpectations(t)
		})
	}
}
