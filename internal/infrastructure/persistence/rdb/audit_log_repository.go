package rdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/audit_log"
)

// AuditLogRepository RDB実装のAuditLogRepository
type AuditLogRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewAuditLogRepository 新しいAuditLogRepositoryを作成
func NewAuditLogRepository(db *DB) *AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		tracer: otel.Tracer("audit-log-repository"),
	}
}

// Save 監査ログを追記
func (r *AuditLogRepository) Save(ctx context.Context, tx *sql.Tx, log *audit_log.AuditLog) error {
	ctx, span := r.tracer.Start(ctx, "AuditLogRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.action", log.Action().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "audit_logs"),
	)

	query := `
		INSERT INTO audit_logs (logged_at, actor, action, coupon_code, details)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.conn(tx).ExecContext(ctx, query,
		log.LoggedAt().UTC(),
		toNullString(log.Actor()),
		log.Action().String(),
		toNullString(log.CouponCode()),
		toNullString(log.Details()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

// FindRecent 新しい順に監査ログを取得
func (r *AuditLogRepository) FindRecent(ctx context.Context, limit, offset int) ([]*audit_log.AuditLog, error) {
	ctx, span := r.tracer.Start(ctx, "AuditLogRepository.FindRecent")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "audit_logs"),
	)

	query := `
		SELECT id, logged_at, actor, action, coupon_code, details
		FROM audit_logs
		ORDER BY logged_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*audit_log.AuditLog
	for rows.Next() {
		var (
			id                         int64
			loggedAt                   time.Time
			actor, couponCode, details sql.NullString
			action                     string
		)
		if err := rows.Scan(&id, &loggedAt, &actor, &action, &couponCode, &details); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, audit_log.Reconstruct(
			id, loggedAt.Local(), actor.String, audit_log.Action(action), couponCode.String, details.String,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}
	return logs, nil
}

// CountByActionSince 指定日時以降の操作件数を返す
func (r *AuditLogRepository) CountByActionSince(ctx context.Context, action audit_log.Action, since time.Time) (int, error) {
	ctx, span := r.tracer.Start(ctx, "AuditLogRepository.CountByActionSince")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.action", action.String()),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "audit_logs"),
	)

	var count int
	query := `SELECT COUNT(*) FROM audit_logs WHERE action = ? AND logged_at >= ?`
	if err := r.db.QueryRowContext(ctx, query, action.String(), since.UTC()).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}
