package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jianji/ledger-assistant/internal/models"
)

// editorStore extends memStore with the lookup and update surface the
// reopen-from-transcript flow needs.
type editorStore struct {
	*memStore
	failUpdate bool
}

func (s *editorStore) ChatLogByID(_ context.Context, id string) (models.ChatLog, error) {
	for _, entry := range s.chatLogs {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.ChatLog{}, errors.New("not found")
}

func (s *editorStore) TransactionByID(_ context.Context, id string) (models.Transaction, error) {
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return models.Transaction{}, errors.New("not found")
}

func (s *editorStore) UpdateTransaction(_ context.Context, t models.Transaction) error {
	if s.failUpdate {
		return errors.New("database is locked")
	}
	for i, tx := range s.transactions {
		if tx.ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	return errors.New("not found")
}

// confirmAndGetLog runs a full confirmation and returns the linked log entry.
func confirmAndGetLog(t *testing.T, store *editorStore) models.ChatLog {
	t.Helper()
	w := NewWorkflow(expenseDraft(), workflowCategories())
	_, err := w.Confirm(context.Background(), store.memStore, "L1", "u1")
	require.NoError(t, err)
	linked := store.linkedLogs()
	require.Len(t, linked, 1)
	return linked[0]
}

func TestOpenFromChatLogResolvesTransaction(t *testing.T) {
	store := &editorStore{memStore: newMemStore()}
	entry := confirmAndGetLog(t, store)

	editor, err := OpenFromChatLog(context.Background(), store, entry.ID)
	require.NoError(t, err)

	tx := editor.Transaction()
	assert.Equal(t, entry.LinkedTransactionID, tx.ID)
	assert.Equal(t, "小明", tx.Person)
}

func TestOpenFromChatLogRejectsUnlinkedEntry(t *testing.T) {
	store := &editorStore{memStore: newMemStore()}
	entry, err := store.AppendChatLog(context.Background(), models.ChatLog{
		LedgerID: "L1", UserID: "u1", Role: models.RoleUser, Content: "你好",
	})
	require.NoError(t, err)

	_, err = OpenFromChatLog(context.Background(), store, entry.ID)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestEditorSavePerformsUpdateInPlace(t *testing.T) {
	store := &editorStore{memStore: newMemStore()}
	entry := confirmAndGetLog(t, store)

	editor, err := OpenFromChatLog(context.Background(), store, entry.ID)
	require.NoError(t, err)

	require.NoError(t, editor.SetAmount(decimal.NewFromInt(60)))
	require.NoError(t, editor.SetCategory(models.CategoryKey{OriginalID: "c1", Label: "交通"}, workflowCategories()))
	require.NoError(t, editor.SetDate("2025-01-09"))
	editor.SetNote("改过的备注")
	require.NoError(t, editor.Save(context.Background()))

	require.Len(t, store.transactions, 1, "update in place, no second transaction")
	saved := store.transactions[0]
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "c1", saved.CategoryID)
	assert.Equal(t, "交通", saved.Item)
	assert.Equal(t, "2025-01-09", saved.Date)
	assert.Equal(t, "改过的备注", saved.Note)
	assert.Equal(t, "小明", saved.Person, "creator is immutable")
}

func TestEditorRejectsTypeMismatchedCategory(t *testing.T) {
	store := &editorStore{memStore: newMemStore()}
	entry := confirmAndGetLog(t, store)

	editor, err := OpenFromChatLog(context.Background(), store, entry.ID)
	require.NoError(t, err)

	err = editor.SetCategory(models.CategoryKey{OriginalID: "c2", Label: "工资收入"}, workflowCategories())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
}

func TestEditorSaveFailureKeepsEdits(t *testing.T) {
	store := &editorStore{memStore: newMemStore()}
	entry := confirmAndGetLog(t, store)

	editor, err := OpenFromChatLog(context.Background(), store, entry.ID)
	require.NoError(t, err)

	require.NoError(t, editor.SetAmount(decimal.NewFromInt(99)))
	store.failUpdate = true
	require.Error(t, editor.Save(context.Background()))

	assert.True(t, editor.Transaction().Amount.Equal(decimal.NewFromInt(99)), "edits retained for retry")

	store.failUpdate = false
	require.NoError(t, editor.Save(context.Background()))
	assert.True(t, store.transactions[0].Amount.Equal(decimal.NewFromInt(99)))
}
