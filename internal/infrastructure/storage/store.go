package storage

import (
	"context"
	"fmt"

	"coupon-server/internal/domain/import_batch"
	"coupon-server/internal/infrastructure/config"
)

const (
	BackendFilesystem = "filesystem"
	BackendRedis      = "redis"
)

// NewArtifactStore 設定に応じた保存先を作成する
// Redisを使う場合は呼び出し側でクライアントを閉じる必要がある
func NewArtifactStore(ctx context.Context, cfg *config.Config) (import_batch.ArtifactStore, RedisClient, error) {
	switch cfg.Artifacts.Backend {
	case BackendRedis:
		client, err := NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, cfg.Artifacts.KeyPrefix, cfg.Artifacts.TTL), client, nil
	case BackendFilesystem, "":
		store, err := NewFilesystemStore(cfg.Artifacts.Directory)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown artifact backend: %s", cfg.Artifacts.Backend)
	}
}
