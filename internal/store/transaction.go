package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jianji/ledger-assistant/internal/category"
	"jianji/ledger-assistant/internal/models"
)

// CreateTransaction persists a ledger entry and returns it with the
// generated id. The amount is stored as its exact decimal string.
func (s *Store) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, ledger_id, user_id, type, date, item, amount, category_id, person, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.LedgerID, t.UserID, t.Type, t.Date, t.Item, t.Amount.String(), t.CategoryID, t.Person, t.Note, t.CreatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	s.log.WithField("transaction_id", t.ID).Info("Transaction created")
	return t, nil
}

// TransactionByID fetches a single transaction.
func (s *Store) TransactionByID(ctx context.Context, id string) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ledger_id, user_id, type, date, item, amount, category_id, person, note, created_at
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, category.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction rewrites the editable fields of an existing entry. The
// person field is deliberately not part of the update.
func (s *Store) UpdateTransaction(ctx context.Context, t models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, date = ?, item = ?, amount = ?, category_id = ?, note = ? WHERE id = ?`,
		t.Type, t.Date, t.Item, t.Amount.String(), t.CategoryID, t.Note, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return category.ErrNotFound
	}
	return nil
}

// TransactionsByLedger lists a ledger's entries, newest calendar date first.
func (s *Store) TransactionsByLedger(ctx context.Context, ledgerID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ledger_id, user_id, type, date, item, amount, category_id, person, note, created_at
		 FROM transactions WHERE ledger_id = ? ORDER BY date DESC, created_at DESC`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	var amount string
	err := row.Scan(&t.ID, &t.LedgerID, &t.UserID, &t.Type, &t.Date, &t.Item, &amount, &t.CategoryID, &t.Person, &t.Note, &t.CreatedAt)
	if err != nil {
		return models.Transaction{}, err
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("stored amount %q is not a decimal: %w", amount, err)
	}
	return t, nil
}
