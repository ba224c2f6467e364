package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coupon-server/internal/domain/import_batch"
)

// MockRedisClient RedisClientのモック
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestRedisStore_Put(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockRedisClient)
		wantError bool
	}{
		{
			name: "正常系: プレフィックスとTTL付きで保存",
			setupMock: func(m *MockRedisClient) {
				m.On("Set", mock.Anything, "pfx:import_batch_x.json", []byte("[]"), time.Hour).Return(nil)
			},
		},
		{
			name: "異常系: Redisエラー",
			setupMock: func(m *MockRedisClient) {
				m.On("Set", mock.Anything, "pfx:import_batch_x.json", []byte("[]"), time.Hour).
					Return(errors.New("connection refused"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockRedisClient)
			tt.setupMock(client)
			store := NewRedisStore(client, "pfx:", time.Hour)

			err := store.Put(context.Background(), "import_batch_x.json", []byte("[]"))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestRedisStore_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockRedisClient)
		want      []byte
		errorType error
		wantError bool
	}{
		{
			name: "正常系: 取得",
			setupMock: func(m *MockRedisClient) {
				m.On("Get", mock.Anything, "pfx:a.csv").Return([]byte("row,error,code\n"), nil)
			},
			want: []byte("row,error,code\n"),
		},
		{
			name: "異常系: キーが存在しない",
			setupMock: func(m *MockRedisClient) {
				m.On("Get", mock.Anything, "pfx:a.csv").Return(nil, ErrKeyNotFound)
			},
			wantError: true,
			errorType: import_batch.ErrArtifactNotFound,
		},
		{
			name: "異常系: Redisエラー",
			setupMock: func(m *MockRedisClient) {
				m.On("Get", mock.Anything, "pfx:a.csv").Return(nil, errors.New("timeout"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockRedisClient)
			tt.setupMock(client)
			store := NewRedisStore(client, "pfx:", 0)

			got, err := store.Get(context.Background(), "a.csv")
			if tt.wantError {
				require.Error(t, err)
				if tt.errorType != nil {
					assert.ErrorIs(t, err, tt.errorType)
				} else {
					assert.NotErrorIs(t, err, import_batch.ErrArtifactNotFound)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestRedisStore_Delete(t *testing.T) {
	client := new(MockRedisClient)
	client.On("Del", mock.Anything, []string{"pfx:a.json"}).Return(nil)
	store := NewRedisStore(client, "pfx:", 0)

	assert.NoError(t, store.Delete(context.Background(), "a.json"))
	// 不正な名前はRedisに問い合わせない
	assert.NoError(t, store.Delete(context.Background(), "../a.json"))
	client.AssertExpectations(t)
}
