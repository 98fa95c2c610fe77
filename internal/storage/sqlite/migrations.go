package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns hold integer cents. Date columns hold 2006-01-02 TEXT.
// IMPORTANT: settlements must be created BEFORE installments due to the foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('settlement', 'loan')),
    external_ref TEXT,
    total_amount INTEGER NOT NULL CHECK (total_amount > 0),
    installment_count INTEGER NOT NULL CHECK (installment_count > 0),
    installment_amount INTEGER NOT NULL CHECK (installment_amount > 0),
    first_due_date TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS installments (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    settlement_id TEXT NOT NULL,
    sequence_number INTEGER NOT NULL,
    due_date TEXT NOT NULL,
    amount INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid')),
    ledger_entry_id TEXT,
    paid_at INTEGER NOT NULL DEFAULT 0,
    UNIQUE (settlement_id, sequence_number),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    type TEXT NOT NULL,
    amount INTEGER NOT NULL,
    date TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    method TEXT NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS savings_goals (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    name TEXT NOT NULL,
    target_amount INTEGER NOT NULL CHECK (target_amount > 0),
    current_amount INTEGER NOT NULL DEFAULT 0,
    target_date TEXT,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed')),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL CHECK (severity IN ('danger', 'warning', 'info')),
    due_date TEXT,
    visible_from TEXT,
    visible_until TEXT,
    dismissed_at INTEGER,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS staff (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    name TEXT NOT NULL,
    start_date TEXT,
    active INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_settlements_scope_id ON settlements(scope_id);
CREATE INDEX IF NOT EXISTS idx_installments_settlement_id ON installments(settlement_id);
CREATE INDEX IF NOT EXISTS idx_installments_scope_due ON installments(scope_id, status, due_date);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_scope_date ON ledger_entries(scope_id, date);
CREATE INDEX IF NOT EXISTS idx_savings_goals_scope_id ON savings_goals(scope_id);
CREATE INDEX IF NOT EXISTS idx_reminders_scope_id ON reminders(scope_id);
CREATE INDEX IF NOT EXISTS idx_staff_scope_id ON staff(scope_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
