package audit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/audit_log"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
)

// AuditApplicationService 監査ログアプリケーションサービス
type AuditApplicationService struct {
	auditRepo audit_log.AuditLogRepository
	logger    *otelinfra.Logger
	tracer    trace.Tracer
}

// NewAuditApplicationService 新しいAuditApplicationServiceを作成
func NewAuditApplicationService(
	auditRepo audit_log.AuditLogRepository,
	logger *otelinfra.Logger,
) *AuditApplicationService {
	return &AuditApplicationService{
		auditRepo: auditRepo,
		logger:    logger,
		tracer:    otel.Tracer("audit-service"),
	}
}

// ListLogs 監査ログを新しい順に取得
func (s *AuditApplicationService) ListLogs(ctx context.Context, req *ListLogsRequest) (*ListLogsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuditApplicationService.ListLogs")
	defer span.End()

	limit, offset := req.Limit, req.Offset
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	logs, err := s.auditRepo.FindRecent(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list audit logs", err, map[string]interface{}{
			"limit":  limit,
			"offset": offset,
		})
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	dtos := make([]*AuditLogDTO, 0, len(logs))
	for _, l := range logs {
		dtos = append(dtos, &AuditLogDTO{
			ID:         l.ID(),
			LoggedAt:   l.LoggedAt(),
			Actor:      l.Actor(),
			Action:     l.Action().String(),
			CouponCode: l.CouponCode(),
			Details:    l.Details(),
		})
	}

	return &ListLogsResponse{Logs: dtos, Limit: limit, Offset: offset}, nil
}
