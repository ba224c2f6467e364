package rdb

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

	"coupon-server/internal/domain/coupon"
)

const couponColumns = `id, code, description, valid_from, valid_to, validity_value, validity_unit,
	issued_to, tags, max_redemptions, redeemed_count, created_at`

// CouponRepository RDB実装のCouponRepository
type CouponRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewCouponRepository 新しいCouponRepositoryを作成
func NewCouponRepository(db *DB) *CouponRepository {
	return &CouponRepository{
		db:     db,
		tracer: otel.Tracer("coupon-repository"),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(s rowScanner) (*coupon.Coupon, error) {
	var (
		id                            int64
		code, unit                    string
		description, issuedTo, tags   sql.NullString
		validFrom, validTo            sql.NullTime
		validityValue, maxRedemptions int
		redeemedCount                 int
		createdAt                     time.Time
	)
	if err := s.Scan(
		&id, &code, &description, &validFrom, &validTo, &validityValue, &unit,
		&issuedTo, &tags, &maxRedemptions, &redeemedCount, &createdAt,
	); err != nil {
		return nil, err
	}

	return coupon.Reconstruct(id, coupon.Attributes{
		Code:           code,
		Description:    description.String,
		ValidFrom:      fromNullTime(validFrom),
		ValidTo:        fromNullTime(validTo),
		ValidityValue:  validityValue,
		ValidityUnit:   coupon.ValidityUnit(unit),
		IssuedTo:       issuedTo.String,
		Tags:           tags.String,
		MaxRedemptions: maxRedemptions,
	}, redeemedCount, createdAt.Local()), nil
}

// FindByCode コードでクーポンを取得
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.FindByCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coupons"),
	)

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = ?`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "coupon not found")
		return nil, coupon.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}

	span.SetAttributes(
		attribute.Int("db.redeemed_count", c.RedeemedCount()),
		attribute.Int("db.max_redemptions", c.MaxRedemptions()),
	)
	span.SetStatus(otelcodes.Ok, "coupon found")
	return c, nil
}

// ExistsByCode コードが登録済みかどうかを返す
func (r *CouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.ExistsByCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coupons"),
	)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons WHERE code = ?`, code).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check coupon existence: %w", err)
	}
	return count > 0, nil
}

// ListCodes 登録済みの全コードを取得
func (r *CouponRepository) ListCodes(ctx context.Context) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.ListCodes")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coupons"),
	)

	rows, err := r.db.QueryContext(ctx, `SELECT code FROM coupons`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list coupon codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan coupon code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coupon codes: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(codes)))
	return codes, nil
}

// FindAll 全クーポンをID昇順で取得
func (r *CouponRepository) FindAll(ctx context.Context) ([]*coupon.Coupon, error) {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.FindAll")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coupons"),
	)

	rows, err := r.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY id ASC`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*coupon.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coupons: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(coupons)))
	return coupons, nil
}

// Create クーポンを作成
func (r *CouponRepository) Create(ctx context.Context, tx *sql.Tx, c *coupon.Coupon) error {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", c.Code()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "coupons"),
	)

	query := `
		INSERT INTO coupons (
			code, description, valid_from, valid_to, validity_value, validity_unit,
			issued_to, tags, max_redemptions, redeemed_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.conn(tx).ExecContext(ctx, query,
		c.Code(),
		toNullString(c.Description()),
		toNullTime(c.ValidFrom()),
		toNullTime(c.ValidTo()),
		c.ValidityValue(),
		c.ValidityUnit().String(),
		toNullString(c.IssuedTo()),
		toNullString(c.Tags()),
		c.MaxRedemptions(),
		c.RedeemedCount(),
		c.CreatedAt().UTC(),
		now,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", coupon.ErrCodeAlreadyExists, c.Code())
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		c.SetID(id)
	}
	return nil
}

// IncrementRedeemedCount 利用上限未満の場合のみ利用回数を1増やす
// 条件付きUPDATEで判定と更新を1文で行う
func (r *CouponRepository) IncrementRedeemedCount(ctx context.Context, tx *sql.Tx, code string) (int, error) {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.IncrementRedeemedCount")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "coupons"),
	)

	exec := r.db.conn(tx)
	query := `
		UPDATE coupons
		SET redeemed_count = redeemed_count + 1, updated_at = ?
		WHERE code = ? AND redeemed_count < max_redemptions
	`
	result, err := exec.ExecContext(ctx, query, time.Now().UTC(), code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to increment redeemed count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var count int
	err = exec.QueryRowContext(ctx, `SELECT redeemed_count FROM coupons WHERE code = ?`, code).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, coupon.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to read redeemed count: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("db.rows_affected", affected),
		attribute.Int("db.redeemed_count", count),
	)
	if affected == 0 {
		return count, coupon.ErrRedemptionCeilingReached
	}
	return count, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	local := t.Time.Local()
	return &local
}
