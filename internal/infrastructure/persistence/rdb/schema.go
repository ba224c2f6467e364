package rdb

import (
	"context"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS coupons (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(80) NOT NULL,
		description VARCHAR(255) NULL,
		valid_from DATETIME NULL,
		valid_to DATETIME NULL,
		validity_value INT NOT NULL DEFAULT 0,
		validity_unit VARCHAR(16) NOT NULL DEFAULT 'days',
		issued_to VARCHAR(120) NULL,
		tags VARCHAR(255) NULL,
		max_redemptions INT NOT NULL DEFAULT 1,
		redeemed_count INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_coupons_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		logged_at DATETIME NOT NULL,
		actor VARCHAR(80) NULL,
		action VARCHAR(80) NOT NULL,
		coupon_code VARCHAR(80) NULL,
		details VARCHAR(255) NULL,
		KEY idx_audit_logs_action_logged_at (action, logged_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS coupons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		description TEXT NULL,
		valid_from DATETIME NULL,
		valid_to DATETIME NULL,
		validity_value INTEGER NOT NULL DEFAULT 0,
		validity_unit TEXT NOT NULL DEFAULT 'days',
		issued_to TEXT NULL,
		tags TEXT NULL,
		max_redemptions INTEGER NOT NULL DEFAULT 1,
		redeemed_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		logged_at DATETIME NOT NULL,
		actor TEXT NULL,
		action TEXT NOT NULL,
		coupon_code TEXT NULL,
		details TEXT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_action_logged_at ON audit_logs (action, logged_at)`,
}

// Migrate テーブルが存在しなければ作成する
func (db *DB) Migrate(ctx context.Context) error {
	statements := mysqlSchema
	if db.driver == DriverSQLite {
		statements = sqliteSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}
