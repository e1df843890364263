// Package chat orchestrates the conversational recording flow: one session
// per ledger dialogue, one confirmation workflow per tentative transaction,
// and a separate editor for reopening already-persisted entries from the
// transcript.
package chat

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"jianji/ledger-assistant/internal/dateutils"
	"jianji/ledger-assistant/internal/models"
)

// State is the confirmation workflow's lifecycle position.
type State string

const (
	StateProposed  State = "proposed"
	StateEditing   State = "editing"
	StateConfirmed State = "confirmed"
	StateCancelled State = "cancelled"
)

// ValidationError rejects a field change or a confirm attempt. The message is
// user-facing and names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransactionCreator is the persistence surface Confirm needs.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	AppendChatLog(ctx context.Context, entry models.ChatLog) (models.ChatLog, error)
}

// Workflow drives one tentative transaction from proposal to a persisted
// entry or a discard. It is not safe for concurrent use; the session model is
// single-threaded.
type Workflow struct {
	state      State
	draft      models.Draft
	categories []models.ExpandedCategory
	warning    string
}

// NewWorkflow starts a workflow in Proposed. When the parser left the
// category unset, the first expanded category of the draft's type becomes the
// default; when none exists the selection stays unresolved and Warning
// explains why confirmation will be blocked.
func NewWorkflow(draft models.Draft, categories []models.ExpandedCategory) *Workflow {
	w := &Workflow{state: StateProposed, draft: draft, categories: categories}
	if draft.Category.IsZero() {
		w.applyDefaultCategory()
	}
	return w
}

func (w *Workflow) applyDefaultCategory() {
	for _, cat := range w.categories {
		if cat.Type == w.draft.Type {
			w.draft.Category = cat.Key
			w.warning = ""
			return
		}
	}
	w.draft.Category = models.CategoryKey{}
	w.warning = fmt.Sprintf("当前账本没有%s分类，请先添加分类", w.draft.Type.Label())
}

// State returns the current lifecycle position.
func (w *Workflow) State() State { return w.state }

// Draft returns a copy of the tentative transaction as currently edited.
func (w *Workflow) Draft() models.Draft { return w.draft }

// Warning returns the blocking notice set when no category of the draft's
// type exists, or empty.
func (w *Workflow) Warning() string { return w.warning }

func (w *Workflow) editable() error {
	if w.state == StateConfirmed || w.state == StateCancelled {
		return &ValidationError{Field: "state", Message: "该记录已结束，无法修改"}
	}
	return nil
}

// SetType switches the draft between income and expense. A category selected
// for the old type is invalid for the new one, so the selection is cleared
// back to unresolved; the user picks again before confirming. Auto-defaulting
// happens only once, at propose time.
func (w *Workflow) SetType(typ models.TransactionType) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !typ.Valid() {
		return &ValidationError{Field: "type", Message: "类型必须是收入或支出"}
	}
	if typ != w.draft.Type {
		w.draft.Type = typ
		w.draft.Category = models.CategoryKey{}
		w.warning = ""
	}
	w.state = StateEditing
	return nil
}

// SetCategory selects an expanded category. It must exist and match the
// draft's type.
func (w *Workflow) SetCategory(key models.CategoryKey) error {
	if err := w.editable(); err != nil {
		return err
	}
	for _, cat := range w.categories {
		if cat.Key == key {
			if cat.Type != w.draft.Type {
				return &ValidationError{Field: "category", Message: "所选分类与收支类型不符"}
			}
			w.draft.Category = key
			w.state = StateEditing
			return nil
		}
	}
	return &ValidationError{Field: "category", Message: "分类不存在"}
}

// SetAmount replaces the amount. Zero and negative values are rejected here
// as well as at confirm time.
func (w *Workflow) SetAmount(amount decimal.Decimal) error {
	if err := w.editable(); err != nil {
		return err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Message: "金额必须大于0"}
	}
	w.draft.Amount = amount
	w.state = StateEditing
	return nil
}

// SetDate replaces the calendar date, which must be ISO formatted.
func (w *Workflow) SetDate(date string) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !dateutils.IsISODate(date) {
		return &ValidationError{Field: "date", Message: "日期格式应为 YYYY-MM-DD"}
	}
	w.draft.Date = date
	w.state = StateEditing
	return nil
}

// SetNote replaces the free-text note.
func (w *Workflow) SetNote(note string) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Note = note
	w.state = StateEditing
	return nil
}

// SetItem replaces the short display label.
func (w *Workflow) SetItem(item string) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Item = item
	w.state = StateEditing
	return nil
}

// Confirm validates the draft, persists it, and appends the linked
// confirmation entry to the transcript. The persisted category_id is the
// stored record's id from the expanded key. On persistence failure the
// workflow stays in Editing with the draft intact so the user can retry; no
// transcript entry is written in that case.
func (w *Workflow) Confirm(ctx context.Context, store TransactionCreator, ledgerID, userID string) (models.Transaction, error) {
	if err := w.editable(); err != nil {
		return models.Transaction{}, err
	}
	if w.draft.Category.IsZero() {
		return models.Transaction{}, &ValidationError{Field: "category", Message: "请选择分类"}
	}
	if !w.categoryMatchesType(w.draft.Category) {
		return models.Transaction{}, &ValidationError{Field: "category", Message: "所选分类与收支类型不符"}
	}
	if w.draft.Amount.LessThanOrEqual(decimal.Zero) {
		return models.Transaction{}, &ValidationError{Field: "amount", Message: "金额必须大于0"}
	}

	created, err := store.CreateTransaction(ctx, models.Transaction{
		LedgerID:   ledgerID,
		UserID:     userID,
		Type:       w.draft.Type,
		Date:       w.draft.Date,
		Item:       w.draft.Item,
		Amount:     w.draft.Amount,
		CategoryID: w.draft.Category.OriginalID,
		Person:     w.draft.Person,
		Note:       w.draft.Note,
	})
	if err != nil {
		w.state = StateEditing
		return models.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	w.state = StateConfirmed

	_, err = store.AppendChatLog(ctx, models.ChatLog{
		LedgerID:            ledgerID,
		UserID:              userID,
		Role:                models.RoleAssistant,
		Content:             confirmationMessage(created),
		LinkedTransactionID: created.ID,
	})
	if err != nil {
		return created, fmt.Errorf("transaction saved but transcript entry failed: %w", err)
	}
	return created, nil
}

// Cancel discards the tentative transaction. Allowed from any non-terminal
// state, produces no persisted side effects.
func (w *Workflow) Cancel() error {
	if err := w.editable(); err != nil {
		return err
	}
	w.state = StateCancelled
	return nil
}

func (w *Workflow) categoryMatchesType(key models.CategoryKey) bool {
	for _, cat := range w.categories {
		if cat.Key == key {
			return cat.Type == w.draft.Type
		}
	}
	return false
}

func confirmationMessage(t models.Transaction) string {
	label := t.Item
	if label == "" {
		label = t.Type.Label()
	}
	return fmt.Sprintf("已记录%s「%s」%s元（%s）", t.Type.Label(), label, t.Amount.String(), t.Date)
}
