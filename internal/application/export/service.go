package export

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/coupon"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
	"coupon-server/internal/infrastructure/observability/prom"
	"coupon-server/internal/infrastructure/spreadsheet"
)

const (
	// SheetName 出力シート名
	SheetName = "coupons"
	// TimestampLayout セルに書き込む日時の形式
	TimestampLayout = "2006-01-02 15:04:05"
)

// Columns 出力列の並び
var Columns = []string{
	"code",
	"description",
	"issued_at",
	"validity_value",
	"validity_unit",
	"issued_to",
	"tags",
	"max_redemptions",
	"redeemed_count",
	"valid_to",
	"status",
}

// ExportFile 出力ファイル
type ExportFile struct {
	Filename string
	Content  []byte
	Count    int
}

// ExportApplicationService クーポン一覧をワークブックとして出力する
type ExportApplicationService struct {
	couponRepo coupon.CouponRepository
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	collectors *prom.Collectors
	tracer     trace.Tracer
	clock      func() time.Time
}

// NewExportApplicationService 新しいExportApplicationServiceを作成
func NewExportApplicationService(
	couponRepo coupon.CouponRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	collectors *prom.Collectors,
) *ExportApplicationService {
	return &ExportApplicationService{
		couponRepo: couponRepo,
		logger:     logger,
		metrics:    metrics,
		collectors: collectors,
		tracer:     otel.Tracer("export-service"),
		clock:      time.Now,
	}
}

// Export 全クーポンをID順に出力する
func (s *ExportApplicationService) Export(ctx context.Context) (*ExportFile, error) {
	ctx, span := s.tracer.Start(ctx, "ExportApplicationService.Export")
	defer span.End()

	coupons, err := s.couponRepo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to load coupons for export", err, nil)
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	now := s.clock()
	rows := make([][]any, 0, len(coupons))
	for _, c := range coupons {
		rows = append(rows, exportRow(c, now))
	}

	content, err := spreadsheet.WriteWorkbook(SheetName, Columns, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to write export workbook", err, map[string]interface{}{
			"count": len(coupons),
		})
		s.metrics.RecordError(ctx, "export_failed")
		return nil, err
	}

	s.collectors.ObserveExport(len(coupons))
	span.SetAttributes(
		attribute.Int("count", len(coupons)),
		attribute.Int("size", len(content)),
	)
	s.logger.Info(ctx, "Coupons exported", map[string]interface{}{
		"count": len(coupons),
		"size":  len(content),
	})

	return &ExportFile{
		Filename: fmt.Sprintf("coupons_export_%d.xlsx", now.Unix()),
		Content:  content,
		Count:    len(coupons),
	}, nil
}

func exportRow(c *coupon.Coupon, at time.Time) []any {
	return []any{
		c.Code(),
		c.Description(),
		timestampCell(c.IssuedAt()),
		c.ValidityValue(),
		c.ValidityUnit().String(),
		c.IssuedTo(),
		c.Tags(),
		c.MaxRedemptions(),
		c.RedeemedCount(),
		timestampCell(c.ValidTo()),
		c.StatusAt(at).String(),
	}
}

// timestampCell 未設定の日時は空セルにする
func timestampCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(TimestampLayout)
}
