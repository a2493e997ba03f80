package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rental-backoffice/internal/logger"
)

type migration struct {
	Version string
	Name    string
	Up      string
}

// Migrations are applied in order and recorded in schema_migrations.
// All timestamps are TIMESTAMP WITHOUT TIME ZONE holding local wall-clock time.
var Migrations = []migration{
	{
		Version: "20240101000001",
		Name:    "create_users",
		Up: `
CREATE TABLE IF NOT EXISTS users (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    username   TEXT NOT NULL UNIQUE,
    role       TEXT NOT NULL DEFAULT 'operator' CHECK (role IN ('admin', 'operator')),
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
);`,
	},
	{
		Version: "20240101000002",
		Name:    "create_clients",
		Up: `
CREATE TABLE IF NOT EXISTS clients (
    id           BIGSERIAL PRIMARY KEY,
    name         TEXT NOT NULL,
    document     TEXT NOT NULL DEFAULT '',
    phone        TEXT NOT NULL DEFAULT '',
    email        TEXT NOT NULL DEFAULT '',
    address      TEXT NOT NULL DEFAULT '',
    observations TEXT NOT NULL DEFAULT '',
    active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at   TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP,
    updated_at   TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_clients_name ON clients (name);`,
	},
	{
		Version: "20240101000003",
		Name:    "create_items",
		Up: `
CREATE TABLE IF NOT EXISTS items (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    internal_code TEXT NOT NULL UNIQUE,
    category      TEXT NOT NULL DEFAULT '',
    rental_value  NUMERIC(12,2) NOT NULL CHECK (rental_value >= 0),
    rental_period TEXT NOT NULL DEFAULT 'day' CHECK (rental_period IN ('hour', 'day', 'week', 'month')),
    status        TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'rented', 'maintenance')),
    observations  TEXT NOT NULL DEFAULT '',
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP,
    updated_at    TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items (status);

CREATE TABLE IF NOT EXISTS item_pricing (
    id                BIGSERIAL PRIMARY KEY,
    item_id           BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    duration_minutes  INTEGER NOT NULL CHECK (duration_minutes > 0),
    label             TEXT NOT NULL,
    price             NUMERIC(12,2) NOT NULL CHECK (price >= 0),
    tolerance_minutes INTEGER NOT NULL DEFAULT 0 CHECK (tolerance_minutes >= 0),
    sort_order        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_item_pricing_item ON item_pricing (item_id, sort_order);`,
	},
	{
		Version: "20240101000004",
		Name:    "create_rentals_and_payments",
		Up: `
CREATE TABLE IF NOT EXISTS rentals (
    id                       BIGSERIAL PRIMARY KEY,
    client_id                BIGINT NOT NULL REFERENCES clients(id),
    item_id                  BIGINT NOT NULL REFERENCES items(id),
    start_date               TIMESTAMP NOT NULL,
    expected_end_date        TIMESTAMP NOT NULL,
    actual_end_date          TIMESTAMP,
    rental_value             NUMERIC(12,2) NOT NULL CHECK (rental_value >= 0),
    deposit                  NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (deposit >= 0),
    late_fee                 NUMERIC(12,2) NOT NULL DEFAULT 0,
    discount                 NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (discount >= 0),
    total_value              NUMERIC(12,2) NOT NULL,
    pricing_duration_minutes INTEGER,
    status                   TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'cancelled', 'overdue')),
    observations             TEXT NOT NULL DEFAULT '',
    created_at               TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP,
    updated_at               TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_rentals_status ON rentals (status, expected_end_date);
CREATE INDEX IF NOT EXISTS idx_rentals_client ON rentals (client_id);
CREATE INDEX IF NOT EXISTS idx_rentals_item ON rentals (item_id);

CREATE TABLE IF NOT EXISTS payments (
    id             BIGSERIAL PRIMARY KEY,
    rental_id      BIGINT NOT NULL REFERENCES rentals(id),
    amount         NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    payment_method TEXT NOT NULL CHECK (payment_method IN ('cash', 'credit_card', 'debit_card', 'pix', 'transfer', 'other')),
    payment_date   TIMESTAMP NOT NULL,
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_payments_rental ON payments (rental_id);
CREATE INDEX IF NOT EXISTS idx_payments_date ON payments (payment_date);`,
	},
	{
		Version: "20240101000005",
		Name:    "create_cash_registers",
		Up: `
CREATE TABLE IF NOT EXISTS cash_registers (
    id              BIGSERIAL PRIMARY KEY,
    operator_id     BIGINT NOT NULL,
    opening_balance NUMERIC(12,2) NOT NULL CHECK (opening_balance >= 0),
    closing_balance NUMERIC(12,2),
    total_entries   NUMERIC(12,2) NOT NULL DEFAULT 0,
    total_exits     NUMERIC(12,2) NOT NULL DEFAULT 0,
    status          TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    observations    TEXT NOT NULL DEFAULT '',
    opened_at       TIMESTAMP NOT NULL,
    closed_at       TIMESTAMP,
    updated_at      TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_cash_registers_open_operator ON cash_registers (operator_id) WHERE status = 'open';
CREATE INDEX IF NOT EXISTS idx_cash_registers_opened_at ON cash_registers (opened_at);

CREATE TABLE IF NOT EXISTS cash_transactions (
    id                  BIGSERIAL PRIMARY KEY,
    cash_register_id    BIGINT NOT NULL REFERENCES cash_registers(id),
    type                TEXT NOT NULL CHECK (type IN ('entry', 'exit')),
    category            TEXT NOT NULL CHECK (category IN ('rental_payment', 'deposit', 'refund', 'expense', 'adjustment', 'withdrawal', 'supply', 'other')),
    amount              NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    description         TEXT NOT NULL,
    payment_method      TEXT CHECK (payment_method IN ('cash', 'credit_card', 'debit_card', 'pix', 'transfer', 'other')),
    reference_type      TEXT,
    reference_id        BIGINT,
    user_id             BIGINT NOT NULL,
    cancelled           BOOLEAN NOT NULL DEFAULT FALSE,
    cancelled_at        TIMESTAMP,
    cancelled_by        BIGINT,
    cancellation_reason TEXT,
    created_at          TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cash_transactions_register ON cash_transactions (cash_register_id);
CREATE INDEX IF NOT EXISTS idx_cash_transactions_reference ON cash_transactions (reference_type, reference_id);`,
	},
	{
		Version: "20240101000006",
		Name:    "create_audit_logs",
		Up: `
CREATE TABLE IF NOT EXISTS audit_logs (
    id          TEXT PRIMARY KEY,
    user_id     BIGINT NOT NULL,
    action      TEXT NOT NULL,
    resource    TEXT NOT NULL,
    resource_id BIGINT NOT NULL DEFAULT 0,
    details     TEXT NOT NULL DEFAULT '',
    ip_address  TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs (resource, resource_id);`,
	},
}

// Migrate applies every migration not yet recorded, each in its own
// transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT LOCALTIMESTAMP
)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range Migrations {
		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.Version, err)
		}
		if exists {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		logger.Info("Applied migration", "version", m.Version, "name", m.Name)
	}
	return nil
}
