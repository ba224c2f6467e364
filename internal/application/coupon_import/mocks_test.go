package coupon_import

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"coupon-server/internal/domain/audit_log"
	"coupon-server/internal/domain/coupon"
	"coupon-server/internal/domain/import_batch"
)

// MockCouponRepository モッククーポンリポジトリ
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) ListCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCouponRepository) FindAll(ctx context.Context) ([]*coupon.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Create(ctx context.Context, tx *sql.Tx, c *coupon.Coupon) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

func (m *MockCouponRepository) IncrementRedeemedCount(ctx context.Context, tx *sql.Tx, code string) (int, error) {
	args := m.Called(ctx, tx, code)
	return args.Int(0), args.Error(1)
}

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

// MockTransactionManager モックトランザクションマネージャー
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

// memoryArtifactStore テスト用のメモリ上の一時ファイル置き場
type memoryArtifactStore struct {
	mu      sync.Mutex
	items   map[string][]byte
	putErr  error
	deleted []string
}

func newMemoryArtifactStore() *memoryArtifactStore {
	return &memoryArtifactStore{items: make(map[string][]byte)}
}

func (s *memoryArtifactStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.items[name] = append([]byte(nil), data...)
	return nil
}

func (s *memoryArtifactStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[name]
	if !ok {
		return nil, import_batch.ErrArtifactNotFound
	}
	return data, nil
}

func (s *memoryArtifactStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *memoryArtifactStore) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[name]
	return ok
}
