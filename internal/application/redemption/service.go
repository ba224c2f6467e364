package redemption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/audit_log"
	"coupon-server/internal/domain/coupon"
	"coupon-server/internal/domain/transaction"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
	"coupon-server/internal/infrastructure/observability/prom"
)

var checkMessages = map[coupon.CouponStatus]string{
	coupon.CouponStatusActive:   "Coupon is valid for redemption",
	coupon.CouponStatusExpired:  "This coupon is expired",
	coupon.CouponStatusUpcoming: "This coupon is not active yet",
	coupon.CouponStatusMaxed:    "Maximum redemptions reached for this coupon",
}

// RedemptionApplicationService クーポン利用アプリケーションサービス
type RedemptionApplicationService struct {
	couponRepo coupon.CouponRepository
	auditRepo  audit_log.AuditLogRepository
	txManager  transaction.TransactionManager
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	collectors *prom.Collectors
	tracer     trace.Tracer
	clock      func() time.Time
}

// NewRedemptionApplicationService 新しいRedemptionApplicationServiceを作成
func NewRedemptionApplicationService(
	couponRepo coupon.CouponRepository,
	auditRepo audit_log.AuditLogRepository,
	txManager transaction.TransactionManager,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	collectors *prom.Collectors,
) *RedemptionApplicationService {
	return &RedemptionApplicationService{
		couponRepo: couponRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		logger:     logger,
		metrics:    metrics,
		collectors: collectors,
		tracer:     otel.Tracer("redemption-service"),
		clock:      time.Now,
	}
}

// Check クーポンが現在利用可能かを判定する。状態は変更しない
func (s *RedemptionApplicationService) Check(ctx context.Context, req *CheckRedemptionRequest) (*CheckRedemptionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RedemptionApplicationService.Check")
	defer span.End()

	code := strings.TrimSpace(req.Code)
	span.SetAttributes(attribute.String("code", code))

	if code == "" {
		err := coupon.ErrMissingCode
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	c, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.Is(err, coupon.ErrCodeNotFound) {
			s.collectors.ObserveRedemption("check", "not_found")
			return nil, err
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}

	status := c.RedemptionStatusAt(s.clock())
	s.collectors.ObserveRedemption("check", strings.ToLower(status.String()))

	span.SetAttributes(
		attribute.String("status", status.String()),
		attribute.Int("redeemed_count", c.RedeemedCount()),
	)

	return &CheckRedemptionResponse{
		Code:           c.Code(),
		OK:             status.IsActive(),
		Status:         status.String(),
		Message:        checkMessages[status],
		ValidFrom:      c.ValidFrom(),
		ValidTo:        c.ValidTo(),
		RedeemedCount:  c.RedeemedCount(),
		MaxRedemptions: c.MaxRedemptions(),
	}, nil
}

// Mark クーポンの利用を1回記録する
// 期間と利用上限を再確認し、上限判定と加算は単一の条件付き更新で行う
func (s *RedemptionApplicationService) Mark(ctx context.Context, req *MarkRedemptionRequest) (*MarkRedemptionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RedemptionApplicationService.Mark")
	defer span.End()

	code := strings.TrimSpace(req.Code)
	span.SetAttributes(attribute.String("code", code))

	s.logger.Info(ctx, "Marking coupon redeemed", map[string]interface{}{
		"code": code,
	})

	if code == "" {
		err := coupon.ErrMissingCode
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	c, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.Is(err, coupon.ErrCodeNotFound) {
			s.collectors.ObserveRedemption("mark", "not_found")
			return nil, err
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}

	now := s.clock()
	if err := c.CheckRedeemableAt(now); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.collectors.ObserveRedemption("mark", redemptionResult(err))
		return nil, err
	}

	var count int
	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		count, err = s.couponRepo.IncrementRedeemedCount(ctx, tx, code)
		if err != nil {
			return err
		}
		log := audit_log.NewAuditLog(now, audit_log.DefaultActor, audit_log.ActionRedeem, code, fmt.Sprintf("Redeemed #%d", count))
		if err := s.auditRepo.Save(ctx, tx, log); err != nil {
			return fmt.Errorf("failed to save audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.collectors.ObserveRedemption("mark", redemptionResult(err))
		if errors.Is(err, coupon.ErrRedemptionCeilingReached) || errors.Is(err, coupon.ErrCodeNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "Failed to mark coupon redeemed", err, map[string]interface{}{
			"code": code,
		})
		s.metrics.RecordError(ctx, "redemption_mark_failed")
		return nil, fmt.Errorf("failed to mark coupon redeemed: %w", err)
	}

	s.collectors.ObserveRedemption("mark", "redeemed")
	s.logger.Info(ctx, "Coupon redeemed successfully", map[string]interface{}{
		"code":            code,
		"redeemed_count":  count,
		"max_redemptions": c.MaxRedemptions(),
	})

	return &MarkRedemptionResponse{
		Code:           code,
		RedeemedCount:  count,
		MaxRedemptions: c.MaxRedemptions(),
	}, nil
}

func redemptionResult(err error) string {
	switch {
	case errors.Is(err, coupon.ErrCouponExpired):
		return "expired"
	case errors.Is(err, coupon.ErrCouponNotYetActive):
		return "upcoming"
	case errors.Is(err, coupon.ErrRedemptionCeilingReached):
		return "maxed"
	case errors.Is(err, coupon.ErrCodeNotFound):
		return "not_found"
	default:
		return "error"
	}
}
