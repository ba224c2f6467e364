package coupon

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

const registerAuditDetails = "created via register api"

// CouponApplicationService クーポン登録・参照アプリケーションサービス
type CouponApplicationService struct {
	couponRepo coupon.CouponRepository
	auditRepo  audit_log.AuditLogRepository
	txManager  transaction.TransactionManager
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	collectors *prom.Collectors
	tracer     trace.Tracer
	clock      func() time.Time
	location   *time.Location
}

// NewCouponApplicationService 新しいCouponApplicationServiceを作成
func NewCouponApplicationService(
	couponRepo coupon.CouponRepository,
	auditRepo audit_log.AuditLogRepository,
	txManager transaction.TransactionManager,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	collectors *prom.Collectors,
) *CouponApplicationService {
	return &CouponApplicationService{
		couponRepo: couponRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		logger:     logger,
		metrics:    metrics,
		collectors: collectors,
		tracer:     otel.Tracer("coupon-service"),
		clock:      time.Now,
		location:   time.Local,
	}
}

// Register クーポンを登録する
func (s *CouponApplicationService) Register(ctx context.Context, req *RegisterCouponRequest) (*CouponDTO, error) {
	ctx, span := s.tracer.Start(ctx, "CouponApplicationService.Register")
	defer span.End()

	code := strings.TrimSpace(req.Code)
	span.SetAttributes(attribute.String("code", code))

	s.logger.Info(ctx, "Registering coupon", map[string]interface{}{
		"code":            code,
		"issued_at":       req.IssuedAt,
		"validity_value":  req.ValidityValue,
		"validity_unit":   req.ValidityUnit,
		"max_redemptions": req.MaxRedemptions,
	})

	now := s.clock().In(s.location)
	c, err := s.buildCoupon(req, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.collectors.ObserveRegistration("invalid")
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.couponRepo.Create(ctx, tx, c); err != nil {
			return err
		}
		log := audit_log.NewAuditLog(now, audit_log.DefaultActor, audit_log.ActionCreate, c.Code(), registerAuditDetails)
		if err := s.auditRepo.Save(ctx, tx, log); err != nil {
			return fmt.Errorf("failed to save audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.Is(err, coupon.ErrCodeAlreadyExists) {
			s.collectors.ObserveRegistration("duplicate")
			return nil, err
		}
		s.logger.Error(ctx, "Failed to register coupon", err, map[string]interface{}{
			"code": code,
		})
		s.metrics.RecordError(ctx, "coupon_register_failed")
		s.collectors.ObserveRegistration("error")
		return nil, fmt.Errorf("failed to register coupon: %w", err)
	}

	s.collectors.ObserveRegistration("created")
	s.logger.Info(ctx, "Coupon registered successfully", map[string]interface{}{
		"code":     c.Code(),
		"valid_to": c.ValidTo(),
	})

	return toCouponDTO(c, now), nil
}

// buildCoupon 入力値を解釈してCouponエンティティを作成
// 空欄の項目は既定値で補い、解釈できない値はバリデーションエラーとする
func (s *CouponApplicationService) buildCoupon(req *RegisterCouponRequest, now time.Time) (*coupon.Coupon, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, coupon.ErrMissingCode
	}

	validFrom := now.Truncate(time.Second)
	if strings.TrimSpace(req.IssuedAt) != "" {
		parsed, err := coupon.ParseIssuedAt(req.IssuedAt, s.location)
		if err != nil {
			return nil, err
		}
		validFrom = parsed
	}

	quantity := 0
	if strings.TrimSpace(req.ValidityValue) != "" {
		n, err := coupon.ParseValidityValue(req.ValidityValue)
		if err != nil {
			return nil, err
		}
		quantity = n
	}

	unit, err := coupon.NewValidityUnit(req.ValidityUnit)
	if err != nil {
		return nil, err
	}

	maxRedemptions, err := coupon.ParseMaxRedemptions(req.MaxRedemptions)
	if err != nil {
		return nil, err
	}

	validTo, err := coupon.DeriveValidTo(validFrom, quantity, unit)
	if err != nil {
		return nil, err
	}

	return coupon.NewCoupon(coupon.Attributes{
		Code:           code,
		Description:    strings.TrimSpace(req.Description),
		ValidFrom:      &validFrom,
		ValidTo:        &validTo,
		ValidityValue:  quantity,
		ValidityUnit:   unit,
		IssuedTo:       strings.TrimSpace(req.IssuedTo),
		Tags:           strings.TrimSpace(req.Tags),
		MaxRedemptions: maxRedemptions,
	})
}

// Check 登録前にコードの重複と有効期間を確認する
// 解釈できない入力は既定値で補い、エラーにしない
func (s *CouponApplicationService) Check(ctx context.Context, req *CheckCouponRequest) (*CheckCouponResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CouponApplicationService.Check")
	defer span.End()

	code := strings.TrimSpace(req.Code)
	span.SetAttributes(attribute.String("code", code))

	if code == "" {
		err := coupon.ErrMissingCode
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	exists, err := s.couponRepo.ExistsByCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}

	now := s.clock().In(s.location)
	validFrom := now
	if parsed, err := coupon.ParseIssuedAt(req.IssuedAt, s.location); err == nil {
		validFrom = parsed
	}
	validTo := coupon.ComputeValidTo(&validFrom, req.ValidityValue, req.ValidityUnit, now)

	status := coupon.CouponStatusActive
	switch {
	case validFrom.After(now):
		status = coupon.CouponStatusUpcoming
	case validTo.Before(now):
		status = coupon.CouponStatusExpired
	}

	resp := &CheckCouponResponse{
		Code:       code,
		CodeExists: exists,
		Status:     status.String(),
		ValidFrom:  validFrom,
		ValidTo:    validTo,
	}
	if exists {
		resp.Message = fmt.Sprintf("Coupon code '%s' already exists.", code)
	}

	span.SetAttributes(
		attribute.Bool("code_exists", exists),
		attribute.String("status", resp.Status),
	)
	return resp, nil
}

// List 全クーポンを現在の状態付きで取得
func (s *CouponApplicationService) List(ctx context.Context) (*ListCouponsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CouponApplicationService.List")
	defer span.End()

	coupons, err := s.couponRepo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list coupons", err, nil)
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	now := s.clock()
	dtos := make([]*CouponDTO, 0, len(coupons))
	for _, c := range coupons {
		dtos = append(dtos, toCouponDTO(c, now))
	}

	span.SetAttributes(attribute.Int("count", len(dtos)))
	return &ListCouponsResponse{Coupons: dtos, Total: len(dtos)}, nil
}

// Stats ダッシュボード用の集計を返す
func (s *CouponApplicationService) Stats(ctx context.Context) (*StatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CouponApplicationService.Stats")
	defer span.End()

	now := s.clock().In(s.location)
	coupons, err := s.couponRepo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	resp := &StatsResponse{GeneratedAt: now}
	horizon := now.Add(24 * time.Hour)
	for _, c := range coupons {
		if c.StatusAt(now) != coupon.CouponStatusActive {
			continue
		}
		resp.Active++
		if vt := c.ValidTo(); vt != nil && !vt.After(horizon) {
			resp.Expiring24h++
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	resp.RedeemedToday, err = s.auditRepo.CountByActionSince(ctx, audit_log.ActionRedeem, midnight)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to count redemptions: %w", err)
	}

	span.SetAttributes(
		attribute.Int("active", resp.Active),
		attribute.Int("redeemed_today", resp.RedeemedToday),
		attribute.Int("expiring_24h", resp.Expiring24h),
	)
	return resp, nil
}
