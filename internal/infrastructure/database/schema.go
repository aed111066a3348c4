package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied at startup. All statements are idempotent so repeated
// starts against the same database are safe.
const schema = `
CREATE TABLE IF NOT EXISTS blocks (
	height           BIGINT PRIMARY KEY,
	hash             TEXT NOT NULL,
	time             TIMESTAMPTZ NOT NULL,
	proposer_address TEXT NOT NULL DEFAULT '',
	num_txs          INTEGER NOT NULL DEFAULT 0,
	total_gas        BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
	hash         TEXT PRIMARY KEY,
	height       BIGINT NOT NULL REFERENCES blocks(height),
	timestamp    TIMESTAMPTZ NOT NULL,
	fee          NUMERIC(78, 0) NOT NULL DEFAULT 0,
	gas          BIGINT NOT NULL DEFAULT 0,
	memo         TEXT NOT NULL DEFAULT '',
	success      BOOLEAN NOT NULL DEFAULT TRUE,
	type         TEXT NOT NULL DEFAULT 'transfer',
	amount       NUMERIC(78, 0) NOT NULL DEFAULT 0,
	from_address TEXT NOT NULL DEFAULT '',
	to_address   TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_height ON transactions(height DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_from ON transactions(from_address);
CREATE INDEX IF NOT EXISTS idx_transactions_to ON transactions(to_address);

CREATE TABLE IF NOT EXISTS validators (
	address      TEXT PRIMARY KEY,
	moniker      TEXT NOT NULL DEFAULT '',
	voting_power BIGINT NOT NULL DEFAULT 0,
	commission   TEXT NOT NULL DEFAULT '0',
	active       BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS index_watermark (
	id         INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	height     BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies the embedded schema
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
