package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jianji/ledger-assistant/internal/category"
	"jianji/ledger-assistant/internal/models"
)

// AppendChatLog persists a transcript entry and returns it with the
// generated id.
func (s *Store) AppendChatLog(ctx context.Context, entry models.ChatLog) (models.ChatLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_logs (id, ledger_id, user_id, role, content, linked_transaction_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.LedgerID, entry.UserID, entry.Role, entry.Content, entry.LinkedTransactionID, entry.CreatedAt)
	if err != nil {
		return models.ChatLog{}, fmt.Errorf("failed to insert chat log: %w", err)
	}
	return entry, nil
}

// ChatLogByID fetches a single transcript entry.
func (s *Store) ChatLogByID(ctx context.Context, id string) (models.ChatLog, error) {
	var entry models.ChatLog
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ledger_id, user_id, role, content, linked_transaction_id, created_at
		 FROM chat_logs WHERE id = ?`, id).
		Scan(&entry.ID, &entry.LedgerID, &entry.UserID, &entry.Role, &entry.Content, &entry.LinkedTransactionID, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatLog{}, category.ErrNotFound
	}
	if err != nil {
		return models.ChatLog{}, fmt.Errorf("failed to fetch chat log: %w", err)
	}
	return entry, nil
}

// RecentChatLogs returns the ledger's last n transcript entries in
// chronological order.
func (s *Store) RecentChatLogs(ctx context.Context, ledgerID string, n int) ([]models.ChatLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ledger_id, user_id, role, content, linked_transaction_id, created_at
		 FROM chat_logs WHERE ledger_id = ?
		 ORDER BY rowid DESC LIMIT ?`, ledgerID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat logs: %w", err)
	}
	defer rows.Close()

	var entries []models.ChatLog
	for rows.Next() {
		var entry models.ChatLog
		if err := rows.Scan(&entry.ID, &entry.LedgerID, &entry.UserID, &entry.Role, &entry.Content, &entry.LinkedTransactionID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
