package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/import_batch"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// validateName パス区切りや親ディレクトリ参照を含む名前を拒否する
func validateName(name string) error {
	if !safeName.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	return nil
}

// FilesystemStore ローカルディレクトリを保存先とするArtifactStore
type FilesystemStore struct {
	dir    string
	tracer trace.Tracer
}

var _ import_batch.ArtifactStore = (*FilesystemStore)(nil)

// NewFilesystemStore 新しいFilesystemStoreを作成。ディレクトリがなければ作成する
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}
	return &FilesystemStore{
		dir:    dir,
		tracer: otel.Tracer("filesystem-artifact-store"),
	}, nil
}

// Put 成果物を一時ファイル経由で書き込む
func (s *FilesystemStore) Put(ctx context.Context, name string, data []byte) error {
	_, span := s.tracer.Start(ctx, "FilesystemStore.Put")
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

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to close artifact %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to store artifact %s: %w", name, err)
	}
	return nil
}

// Get 成果物を読み込む
func (s *FilesystemStore) Get(ctx context.Context, name string) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "FilesystemStore.Get")
	defer span.End()

	span.SetAttributes(attribute.String("artifact.name", name))

	if err := validateName(name); err != nil {
		return nil, import_batch.ErrArtifactNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		span.SetStatus(otelcodes.Ok, "artifact not found")
		return nil, import_batch.ErrArtifactNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, nil
}

// Delete 成果物を削除
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	_, span := s.tracer.Start(ctx, "FilesystemStore.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("artifact.name", name))

	if err := validateName(name); err != nil {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete artifact %s: %w", name, err)
	}
	return nil
}
