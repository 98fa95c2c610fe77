package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

// CreateLedgerEntry appends an entry to the cash ledger.
func (s *SQLiteStore) CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = s.now()
	}

	amount, err := toCents(e.Amount)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, scope_id, type, amount, date, note, method, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ScopeID, string(e.Type), amount, e.Date, e.Note,
		string(e.Method), e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return nil
}

// GetLedgerEntry retrieves a ledger entry by ID within a scope.
func (s *SQLiteStore) GetLedgerEntry(ctx context.Context, scopeID, entryID string) (*models.LedgerEntry, error) {
	e := &models.LedgerEntry{}
	var typ, method string
	var amount int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, scope_id, type, amount, date, note, method, created_by, created_at
		 FROM ledger_entries WHERE id = ? AND scope_id = ?`,
		entryID, scopeID,
	).Scan(&e.ID, &e.ScopeID, &typ, &amount, &e.Date, &e.Note, &method, &e.CreatedBy, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	e.Type = models.LedgerEntryType(typ)
	e.Method = models.PaymentMethod(method)
	e.Amount = fromCents(amount)
	return e, nil
}

// DeleteLedgerEntry removes a ledger entry by ID.
func (s *SQLiteStore) DeleteLedgerEntry(ctx context.Context, scopeID, entryID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM ledger_entries WHERE id = ? AND scope_id = ?",
		entryID, scopeID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted ledger entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("ledger entry %s: %w", entryID, storage.ErrNotFound)
	}

	return nil
}
