package database

import (
	"context"
	"database/sql"
)

// schema holds the table definitions for the fleet store.  Statements
// are idempotent so EnsureSchema can run on every startup; a fresh or
// partially provisioned database ends up with the full layout.  The
// plate_key column stores the normalized plate (lower-cased, spaces
// stripped) and carries the uniqueness constraint, so plates that
// differ only in spacing or case cannot both be registered.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		full_name   VARCHAR(255) NOT NULL UNIQUE,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		plate             VARCHAR(64) NOT NULL,
		plate_key         VARCHAR(64) NOT NULL UNIQUE,
		brand             VARCHAR(128) NOT NULL DEFAULT '',
		model             VARCHAR(128) NOT NULL DEFAULT '',
		year              INT NOT NULL DEFAULT 0,
		color             VARCHAR(64) NOT NULL DEFAULT '',
		vehicle_type      VARCHAR(64) NOT NULL DEFAULT '',
		asset_number      VARCHAR(128) NOT NULL DEFAULT '',
		chassis_number    VARCHAR(128) NOT NULL DEFAULT '',
		engine_number     VARCHAR(128) NOT NULL DEFAULT '',
		description       VARCHAR(512) NOT NULL DEFAULT '',
		caretaker_org     VARCHAR(128) NOT NULL DEFAULT '',
		vehicle_condition VARCHAR(32) NOT NULL DEFAULT 'normal',
		manual_status     VARCHAR(32) NOT NULL DEFAULT 'available',
		status            VARCHAR(32) NOT NULL DEFAULT 'available',
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS usage_records (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		vehicle_id     BIGINT UNSIGNED NOT NULL,
		borrower_id    BIGINT UNSIGNED NOT NULL,
		start_time     DATETIME NOT NULL,
		planned_return DATETIME NULL,
		returned_at    DATETIME NULL,
		is_maintenance TINYINT(1) NOT NULL DEFAULT 0,
		purpose        VARCHAR(512) NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_usage_vehicle_open (vehicle_id, returned_at),
		CONSTRAINT fk_usage_vehicle  FOREIGN KEY (vehicle_id)  REFERENCES vehicles (id),
		CONSTRAINT fk_usage_borrower FOREIGN KEY (borrower_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		vehicle_id BIGINT UNSIGNED NOT NULL,
		start_date DATE NOT NULL,
		end_date   DATE NOT NULL,
		party_name VARCHAR(255) NOT NULL,
		note       VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_reservation_vehicle (vehicle_id, start_date),
		CONSTRAINT fk_reservation_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles (id)
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_orders (
		id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		vehicle_id        BIGINT UNSIGNED NOT NULL,
		repair_date       DATE NULL,
		accept_date       DATE NULL,
		center_name       VARCHAR(255) NOT NULL DEFAULT '',
		note              VARCHAR(512) NOT NULL DEFAULT '',
		total_qty         INT NOT NULL DEFAULT 0,
		subtotal_cents    BIGINT NOT NULL DEFAULT 0,
		tax_cents         BIGINT NOT NULL DEFAULT 0,
		grand_total_cents BIGINT NOT NULL DEFAULT 0,
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_order_vehicle_open (vehicle_id, accept_date),
		CONSTRAINT fk_order_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles (id)
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_items (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id         BIGINT UNSIGNED NOT NULL,
		item_no          INT NOT NULL,
		description      VARCHAR(512) NOT NULL DEFAULT '',
		qty              INT NOT NULL DEFAULT 0,
		unit_price_cents BIGINT NOT NULL DEFAULT 0,
		amount_cents     BIGINT NOT NULL DEFAULT 0,
		CONSTRAINT fk_item_order FOREIGN KEY (order_id) REFERENCES maintenance_orders (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_committee (
		order_id BIGINT UNSIGNED NOT NULL,
		user_id  BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (order_id, user_id),
		CONSTRAINT fk_committee_order FOREIGN KEY (order_id) REFERENCES maintenance_orders (id) ON DELETE CASCADE,
		CONSTRAINT fk_committee_user  FOREIGN KEY (user_id)  REFERENCES users (id)
	)`,
}

// EnsureSchema creates any missing tables.  It runs at startup before
// the HTTP server begins accepting requests.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
