package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

const settlementColumns = `id, scope_id, name, kind, external_ref, total_amount,
	installment_count, installment_amount, first_due_date, created_at`

// CreateSettlement persists a new settlement row. Installments are inserted
// separately with CreateInstallments.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = s.now()
	}

	total, err := toCents(settlement.TotalAmount)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	perInstallment, err := toCents(settlement.InstallmentAmount)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.ScopeID, settlement.Name, string(settlement.Kind),
		nullString(settlement.ExternalRef), total,
		settlement.InstallmentCount, perInstallment,
		settlement.FirstDueDate, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var kind string
	var ref sql.NullString
	var total, perInstallment int64

	if err := row.Scan(&settlement.ID, &settlement.ScopeID, &settlement.Name, &kind, &ref,
		&total, &settlement.InstallmentCount, &perInstallment,
		&settlement.FirstDueDate, &settlement.CreatedAt); err != nil {
		return nil, err
	}

	settlement.Kind = models.SettlementKind(kind)
	settlement.ExternalRef = stringPtr(ref)
	settlement.TotalAmount = fromCents(total)
	settlement.InstallmentAmount = fromCents(perInstallment)
	return settlement, nil
}

// GetSettlement retrieves a settlement by ID within a scope.
func (s *SQLiteStore) GetSettlement(ctx context.Context, scopeID, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ? AND scope_id = ?`,
		settlementID, scopeID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// DeleteSettlement removes a settlement by ID. Its installments go with it.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, scopeID, settlementID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM settlements WHERE id = ? AND scope_id = ?",
		settlementID, scopeID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted settlement: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}

	return nil
}

// CreateInstallments inserts the whole schedule in one transaction.
func (s *SQLiteStore) CreateInstallments(ctx context.Context, scopeID string, installments []models.Installment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO installments (id, scope_id, settlement_id, sequence_number, due_date, amount, status, ledger_entry_id, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare installment insert: %w", err)
	}
	defer stmt.Close()

	for i := range installments {
		inst := &installments[i]
		if inst.ID == "" {
			inst.ID = uuid.New().String()
		}
		if inst.Status == "" {
			inst.Status = models.InstallmentPending
		}

		amount, err := toCents(inst.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", inst.SequenceNumber, err)
		}
		if _, err := stmt.ExecContext(ctx,
			inst.ID, scopeID, inst.SettlementID, inst.SequenceNumber, inst.DueDate,
			amount, string(inst.Status), nullString(inst.LedgerEntryID), inst.PaidAt,
		); err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", inst.SequenceNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const installmentColumns = `i.id, i.settlement_id, i.sequence_number, i.due_date, i.amount, i.status, i.ledger_entry_id, i.paid_at`

func scanInstallment(row rowScanner, extra ...any) (models.Installment, error) {
	var inst models.Installment
	var status string
	var amount int64
	var entryID sql.NullString

	dest := append([]any{&inst.ID, &inst.SettlementID, &inst.SequenceNumber, &inst.DueDate,
		&amount, &status, &entryID, &inst.PaidAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return inst, err
	}

	inst.Amount = fromCents(amount)
	inst.Status = models.InstallmentStatus(status)
	inst.LedgerEntryID = stringPtr(entryID)
	return inst, nil
}

// ListInstallments returns a settlement's installments in sequence order.
func (s *SQLiteStore) ListInstallments(ctx context.Context, scopeID, settlementID string) ([]models.Installment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+installmentColumns+` FROM installments i
		 WHERE i.settlement_id = ? AND i.scope_id = ?
		 ORDER BY i.sequence_number`,
		settlementID, scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []models.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate installments: %w", err)
	}

	return installments, nil
}

// GetInstallment retrieves an installment by ID within a scope.
func (s *SQLiteStore) GetInstallment(ctx context.Context, scopeID, installmentID string) (*models.Installment, error) {
	inst, err := scanInstallment(s.db.QueryRowContext(ctx,
		`SELECT `+installmentColumns+` FROM installments i WHERE i.id = ? AND i.scope_id = ?`,
		installmentID, scopeID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("installment %s: %w", installmentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}
	return &inst, nil
}

// MarkInstallmentPaid flips a pending installment to paid. The status guard
// is part of the UPDATE so two concurrent payments cannot both succeed.
func (s *SQLiteStore) MarkInstallmentPaid(ctx context.Context, scopeID, installmentID, ledgerEntryID string, paidAt int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE installments SET status = 'paid', ledger_entry_id = ?, paid_at = ?
		 WHERE id = ? AND scope_id = ? AND status = 'pending'`,
		ledgerEntryID, paidAt, installmentID, scopeID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark installment paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check installment update: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: either it does not exist here or it is already paid.
	if _, err := s.GetInstallment(ctx, scopeID, installmentID); err != nil {
		return err
	}
	return fmt.Errorf("installment %s: %w", installmentID, storage.ErrNotPending)
}

// ResetInstallment sets a paid installment back to pending.
func (s *SQLiteStore) ResetInstallment(ctx context.Context, scopeID, installmentID string) (*string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	var entryID sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT status, ledger_entry_id FROM installments WHERE id = ? AND scope_id = ?",
		installmentID, scopeID,
	).Scan(&status, &entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("installment %s: %w", installmentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}
	if models.InstallmentStatus(status) != models.InstallmentPaid {
		return nil, fmt.Errorf("installment %s: %w", installmentID, storage.ErrNotPaid)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE installments SET status = 'pending', ledger_entry_id = NULL, paid_at = 0
		 WHERE id = ? AND scope_id = ?`,
		installmentID, scopeID,
	); err != nil {
		return nil, fmt.Errorf("failed to reset installment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stringPtr(entryID), nil
}

// ListPendingInstallmentsDue returns pending installments due in [from, to].
func (s *SQLiteStore) ListPendingInstallmentsDue(ctx context.Context, scopeID string, from, to calendar.Date) ([]models.InstallmentDue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+installmentColumns+`, st.name, st.external_ref, st.installment_count
		 FROM installments i
		 JOIN settlements st ON st.id = i.settlement_id
		 WHERE i.scope_id = ? AND st.scope_id = ? AND i.status = 'pending'
		   AND i.due_date >= ? AND i.due_date <= ?
		 ORDER BY i.due_date, i.sequence_number`,
		scopeID, scopeID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due installments: %w", err)
	}
	defer rows.Close()

	var due []models.InstallmentDue
	for rows.Next() {
		var d models.InstallmentDue
		var ref sql.NullString
		inst, err := scanInstallment(rows, &d.SettlementName, &ref, &d.InstallmentCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due installment: %w", err)
		}
		d.Installment = inst
		d.ExternalRef = stringPtr(ref)
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due installments: %w", err)
	}

	return due, nil
}
