package rdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TransactionManager RDBのトランザクションで書き込みをまとめる
type TransactionManager struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransactionManager 新しいTransactionManagerを作成
func NewTransactionManager(db *DB) *TransactionManager {
	return &TransactionManager{
		db:     db,
		tracer: otel.Tracer("transaction-manager"),
	}
}

// WithTransaction fnを1つのトランザクションで実行する
// fnがエラーを返すかpanicした場合はロールバックする
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	ctx, span := tm.tracer.Start(ctx, "TransactionManager.WithTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("db.system", tm.db.Driver()))

	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			span.SetAttributes(attribute.String("db.outcome", "panic"))
			panic(p)
		}
		err = finish(tx, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			span.SetAttributes(attribute.String("db.outcome", "rollback"))
			return
		}
		span.SetAttributes(attribute.String("db.outcome", "commit"))
	}()

	return fn(tx)
}

// finish fnの結果に応じてコミットまたはロールバックする
func finish(tx *sql.Tx, fnErr error) error {
	if fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(fnErr, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return fnErr
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
