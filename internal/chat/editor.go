package chat

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"jianji/ledger-assistant/internal/dateutils"
	"jianji/ledger-assistant/internal/models"
)

// ErrNotLinked means the transcript entry carries no transaction reference.
var ErrNotLinked = errors.New("chat log entry is not linked to a transaction")

// EditorStore is the persistence surface the reopen flow needs.
type EditorStore interface {
	ChatLogByID(ctx context.Context, id string) (models.ChatLog, error)
	TransactionByID(ctx context.Context, id string) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) error
}

// Editor reopens an already-persisted transaction from a transcript entry's
// linked transaction id. Unlike the confirmation workflow it never creates:
// saving performs an update in place. The creating person is immutable.
type Editor struct {
	store EditorStore
	tx    models.Transaction
}

// OpenFromChatLog resolves the transcript entry's linked transaction and
// returns an editor over it.
func OpenFromChatLog(ctx context.Context, store EditorStore, chatLogID string) (*Editor, error) {
	entry, err := store.ChatLogByID(ctx, chatLogID)
	if err != nil {
		return nil, err
	}
	if entry.LinkedTransactionID == "" {
		return nil, ErrNotLinked
	}
	tx, err := store.TransactionByID(ctx, entry.LinkedTransactionID)
	if err != nil {
		return nil, err
	}
	return &Editor{store: store, tx: tx}, nil
}

// Transaction returns the entry as currently edited.
func (e *Editor) Transaction() models.Transaction { return e.tx }

// SetAmount replaces the amount; must stay positive.
func (e *Editor) SetAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Message: "金额必须大于0"}
	}
	e.tx.Amount = amount
	return nil
}

// SetCategory replaces the category. The expanded entry must match the
// transaction's type; the stored record id is what gets persisted.
func (e *Editor) SetCategory(key models.CategoryKey, categories []models.ExpandedCategory) error {
	for _, cat := range categories {
		if cat.Key == key {
			if cat.Type != e.tx.Type {
				return &ValidationError{Field: "category", Message: "所选分类与收支类型不符"}
			}
			e.tx.CategoryID = key.OriginalID
			e.tx.Item = key.Label
			return nil
		}
	}
	return &ValidationError{Field: "category", Message: "分类不存在"}
}

// SetDate replaces the calendar date.
func (e *Editor) SetDate(date string) error {
	if !dateutils.IsISODate(date) {
		return &ValidationError{Field: "date", Message: "日期格式应为 YYYY-MM-DD"}
	}
	e.tx.Date = date
	return nil
}

// SetNote replaces the note.
func (e *Editor) SetNote(note string) {
	e.tx.Note = note
}

// Save writes the edited fields back. On failure the edited state is kept so
// the caller can retry.
func (e *Editor) Save(ctx context.Context) error {
	return e.store.UpdateTransaction(ctx, e.tx)
}
