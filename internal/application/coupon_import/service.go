package coupon_import

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/domain/audit_log"
	"coupon-server/internal/domain/coupon"
	"coupon-server/internal/domain/import_batch"
	"coupon-server/internal/domain/transaction"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
	"coupon-server/internal/infrastructure/observability/prom"
	"coupon-server/internal/infrastructure/spreadsheet"
)

// CouponImportApplicationService クーポン一括取り込みアプリケーションサービス
// アップロード時は検証と一時保存のみを行い、確定時に一括で登録する
type CouponImportApplicationService struct {
	couponRepo coupon.CouponRepository
	auditRepo  audit_log.AuditLogRepository
	txManager  transaction.TransactionManager
	store      import_batch.ArtifactStore
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	collectors *prom.Collectors
	tracer     trace.Tracer
	clock      func() time.Time
	location   *time.Location
}

// NewCouponImportApplicationService 新しいCouponImportApplicationServiceを作成
func NewCouponImportApplicationService(
	couponRepo coupon.CouponRepository,
	auditRepo audit_log.AuditLogRepository,
	txManager transaction.TransactionManager,
	store import_batch.ArtifactStore,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	collectors *prom.Collectors,
) *CouponImportApplicationService {
	return &CouponImportApplicationService{
		couponRepo: couponRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		store:      store,
		logger:     logger,
		metrics:    metrics,
		collectors: collectors,
		tracer:     otel.Tracer("coupon-import-service"),
		clock:      time.Now,
		location:   time.Local,
	}
}

// StageImport 取り込みファイルを検証し、受理行を一時バッチとして保存する
// 記録ストアには書き込まない
func (s *CouponImportApplicationService) StageImport(ctx context.Context, req *StageImportRequest) (*ImportPreview, error) {
	ctx, span := s.tracer.Start(ctx, "CouponImportApplicationService.StageImport")
	defer span.End()

	span.SetAttributes(
		attribute.String("filename", req.Filename),
		attribute.Int("size", len(req.Content)),
	)

	s.logger.Info(ctx, "Staging coupon import", map[string]interface{}{
		"filename": req.Filename,
		"size":     len(req.Content),
	})

	kind, err := spreadsheet.KindFromFilename(req.Filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	s.metrics.RecordUpload(ctx, kind.String(), int64(len(req.Content)))

	table, err := spreadsheet.Read(kind, req.Content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Warn(ctx, "Failed to read import file", map[string]interface{}{
			"filename": req.Filename,
			"error":    err.Error(),
		})
		return nil, err
	}

	if missing := table.MissingColumns(import_batch.RequiredColumns); len(missing) > 0 {
		err := &import_batch.MissingColumnsError{Columns: missing}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	existing, err := s.couponRepo.ListCodes(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load existing coupon codes: %w", err)
	}

	var (
		accepted []import_batch.StagedEntry
		skipped  []import_batch.SkippedRow
		rejects  []import_batch.RejectedRow
	)
	validator := newRowValidator(existing, s.location)
	for _, row := range table.Rows() {
		result := validator.validate(row)
		switch result.outcome {
		case outcomeAccepted:
			accepted = append(accepted, import_batch.NewStagedEntry(row.Number(), result.attrs, s.location))
		case outcomeSkipped:
			skipped = append(skipped, import_batch.SkippedRow{Row: row.Number(), Code: result.code, Reason: result.reason})
		case outcomeRejected:
			rejects = append(rejects, import_batch.RejectedRow{
				Row:    row.Number(),
				Reason: result.reason,
				Detail: result.detail(),
				Data:   row.Record(),
			})
		}
	}

	preview := &ImportPreview{
		AcceptedCount: len(accepted),
		SkippedCount:  len(skipped),
		RejectedCount: len(rejects),
		Accepted:      head(accepted),
		Skipped:       head(skipped),
		Rejected:      rejectedPreviews(head(rejects)),
	}

	now := s.clock()
	if len(accepted) > 0 {
		batchID, err := s.stageBatch(ctx, now, accepted)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			s.logger.Error(ctx, "Failed to stage import batch", err, map[string]interface{}{
				"filename": req.Filename,
				"accepted": len(accepted),
			})
			s.metrics.RecordError(ctx, "import_staging_failed")
			return nil, err
		}
		preview.BatchID = batchID
	}

	if len(rejects) > 0 {
		reportID, err := s.storeErrorReport(ctx, now, table.Columns(), rejects)
		if err != nil {
			s.logger.Warn(ctx, "Failed to store import error report", map[string]interface{}{
				"filename": req.Filename,
				"rejected": len(rejects),
				"error":    err.Error(),
			})
		} else {
			preview.ErrorReportID = reportID
		}
	}

	s.collectors.ObserveImportRows(len(accepted), len(skipped), len(rejects))

	span.SetAttributes(
		attribute.Int("accepted", len(accepted)),
		attribute.Int("skipped", len(skipped)),
		attribute.Int("rejected", len(rejects)),
		attribute.String("batch_id", preview.BatchID),
	)
	s.logger.Info(ctx, "Coupon import staged", map[string]interface{}{
		"filename":        req.Filename,
		"accepted":        len(accepted),
		"skipped":         len(skipped),
		"rejected":        len(rejects),
		"batch_id":        preview.BatchID,
		"error_report_id": preview.ErrorReportID,
	})

	return preview, nil
}

func (s *CouponImportApplicationService) stageBatch(ctx context.Context, now time.Time, entries []import_batch.StagedEntry) (string, error) {
	data, err := import_batch.EncodeBatch(entries)
	if err != nil {
		return "", fmt.Errorf("%w: %w", import_batch.ErrStagingFailed, err)
	}
	id := import_batch.NewID(now)
	if err := s.store.Put(ctx, import_batch.BatchArtifactName(id), data); err != nil {
		return "", fmt.Errorf("%w: %w", import_batch.ErrStagingFailed, err)
	}
	return id, nil
}

// storeErrorReport 拒否行のレポートを保存する
// 通常形式で書き出せない場合は行番号・理由・コードのみの形式で保存する
func (s *CouponImportApplicationService) storeErrorReport(ctx context.Context, now time.Time, columns []string, rows []import_batch.RejectedRow) (string, error) {
	data, err := import_batch.EncodeErrorReport(columns, rows)
	if err != nil {
		s.logger.Warn(ctx, "Falling back to minimal error report", map[string]interface{}{
			"error": err.Error(),
		})
		data = import_batch.EncodeMinimalErrorReport(rows)
	}
	id := import_batch.NewID(now)
	if err := s.store.Put(ctx, import_batch.ReportArtifactName(id), data); err != nil {
		return "", err
	}
	return id, nil
}

// ConfirmImport 一時バッチの全行を1トランザクションで登録する
// 業務ルールの再検証は行わない
func (s *CouponImportApplicationService) ConfirmImport(ctx context.Context, req *ConfirmImportRequest) (*ConfirmImportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CouponImportApplicationService.ConfirmImport")
	defer span.End()

	span.SetAttributes(attribute.String("batch_id", req.BatchID))

	s.logger.Info(ctx, "Confirming coupon import", map[string]interface{}{
		"batch_id": req.BatchID,
	})

	id, err := import_batch.ParseID(req.BatchID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.collectors.ObserveImportConfirm("not_found", 0)
		return nil, import_batch.ErrBatchNotFound
	}
	name := import_batch.BatchArtifactName(id)

	data, err := s.store.Get(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.Is(err, import_batch.ErrArtifactNotFound) {
			s.collectors.ObserveImportConfirm("not_found", 0)
			return nil, import_batch.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to load import batch: %w", err)
	}

	entries, err := import_batch.DecodeBatch(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.discard(ctx, name)
		if errors.Is(err, import_batch.ErrBatchEmpty) {
			s.collectors.ObserveImportConfirm("empty", 0)
		} else {
			s.collectors.ObserveImportConfirm("corrupt", 0)
			s.logger.Warn(ctx, "Discarded corrupt import batch", map[string]interface{}{
				"batch_id": id,
				"error":    err.Error(),
			})
		}
		return nil, err
	}

	now := s.clock()
	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, entry := range entries {
			c := coupon.Reconstruct(0, entry.Attributes(s.location), entry.Data.RedeemedCount, now)
			if err := s.couponRepo.Create(ctx, tx, c); err != nil {
				return fmt.Errorf("row %d: %w", entry.Row, err)
			}
			details := fmt.Sprintf("imported from batch %s row %d", id, entry.Row)
			log := audit_log.NewAuditLog(now, audit_log.DefaultActor, audit_log.ActionImport, c.Code(), details)
			if err := s.auditRepo.Save(ctx, tx, log); err != nil {
				return fmt.Errorf("row %d: failed to save audit log: %w", entry.Row, err)
			}
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", import_batch.ErrCommitFailed, err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to commit coupon import", err, map[string]interface{}{
			"batch_id": id,
			"rows":     len(entries),
		})
		s.metrics.RecordError(ctx, "import_commit_failed")
		s.collectors.ObserveImportConfirm("commit_failed", 0)
		return nil, err
	}

	s.discard(ctx, name)
	s.collectors.ObserveImportConfirm("committed", len(entries))

	span.SetAttributes(attribute.Int("inserted", len(entries)))
	s.logger.Info(ctx, "Coupon import committed", map[string]interface{}{
		"batch_id": id,
		"inserted": len(entries),
	})

	return &ConfirmImportResponse{BatchID: id, Inserted: len(entries)}, nil
}

// discard 一時バッチを削除する。失敗はログのみ
func (s *CouponImportApplicationService) discard(ctx context.Context, name string) {
	if err := s.store.Delete(ctx, name); err != nil {
		s.logger.Warn(ctx, "Failed to delete import batch", map[string]interface{}{
			"artifact": name,
			"error":    err.Error(),
		})
	}
}

// GetStagedBatch 一時バッチの内容を取得する
func (s *CouponImportApplicationService) GetStagedBatch(ctx context.Context, batchID string) (*Artifact, error) {
	ctx, span := s.tracer.Start(ctx, "CouponImportApplicationService.GetStagedBatch")
	defer span.End()

	span.SetAttributes(attribute.String("batch_id", batchID))

	artifact, err := s.load(ctx, batchID, import_batch.BatchArtifactName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.Is(err, import_batch.ErrArtifactNotFound) {
			return nil, import_batch.ErrBatchNotFound
		}
		return nil, err
	}
	return artifact, nil
}

// GetErrorReport エラーレポートを取得する
func (s *CouponImportApplicationService) GetErrorReport(ctx context.Context, reportID string) (*Artifact, error) {
	ctx, span := s.tracer.Start(ctx, "CouponImportApplicationService.GetErrorReport")
	defer span.End()

	span.SetAttributes(attribute.String("report_id", reportID))

	artifact, err := s.load(ctx, reportID, import_batch.ReportArtifactName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.Is(err, import_batch.ErrArtifactNotFound) {
			return nil, import_batch.ErrReportNotFound
		}
		return nil, err
	}
	return artifact, nil
}

func (s *CouponImportApplicationService) load(ctx context.Context, rawID string, nameOf func(string) string) (*Artifact, error) {
	id, err := import_batch.ParseID(rawID)
	if err != nil {
		return nil, import_batch.ErrArtifactNotFound
	}
	name := nameOf(id)
	data, err := s.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, import_batch.ErrArtifactNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return &Artifact{Name: name, Content: data}, nil
}

func head[T any](items []T) []T {
	if len(items) > PreviewLimit {
		return items[:PreviewLimit]
	}
	return items
}

func rejectedPreviews(rows []import_batch.RejectedRow) []RejectedPreview {
	previews := make([]RejectedPreview, 0, len(rows))
	for _, r := range rows {
		previews = append(previews, RejectedPreview{
			Row:     r.Row,
			Reason:  r.Reason.String(),
			Message: r.Reason.Message(),
		})
	}
	return previews
}
