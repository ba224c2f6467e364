package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/import_batch"
)

// RedisStore Redisを保存先とするArtifactStore
type RedisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
	tracer trace.Tracer
}

var _ import_batch.ArtifactStore = (*RedisStore)(nil)

// NewRedisStore 新しいRedisStoreを作成。ttlが0の場合は期限なし
func NewRedisStore(client RedisClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		tracer: otel.Tracer("redis-artifact-store"),
	}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Put 成果物を保存
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "RedisStore.Put")
	defer span.End()

	span.SetAttributes(
		attribute.String("artifact.name", name),
		attribute.Int("artifact.size", len(data)),
	)

	if err := validateName(name); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	if err := s.client.Set(ctx, s.key(name), data, s.ttl); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to store artifact %s: %w", name, err)
	}
	return nil
}

// Get 成果物を取得
func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "RedisStore.Get")
	defer span.End()

	span.SetAttributes(attribute.String("artifact.name", name))

	if err := validateName(name); err != nil {
		return nil, import_batch.ErrArtifactNotFound
	}
	data, err := s.client.Get(ctx, s.key(name))
	if errors.Is(err, ErrKeyNotFound) {
		span.SetStatus(otelcodes.Ok, "artifact not found")
		return nil, import_batch.ErrArtifactNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load artifact %s: %w", name, err)
	}
	return data, nil
}

// Delete 成果物を削除
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "RedisStore.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("artifact.name", name))

	if err := validateName(name); err != nil {
		return nil
	}
	if err := s.client.Del(ctx, s.key(name)); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete artifact %s: %w", name, err)
	}
	return nil
}
