package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jianji/ledger-assistant/internal/models"
)

// memStore is an in-memory ChatStore for workflow and session tests.
type memStore struct {
	transactions []models.Transaction
	chatLogs     []models.ChatLog
	permissions  map[string]models.Permission

	failCreate bool
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{permissions: map[string]models.Permission{}}
}

func (s *memStore) genID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *memStore) CreateTransaction(_ context.Context, t models.Transaction) (models.Transaction, error) {
	if s.failCreate {
		return models.Transaction{}, errors.New("database is locked")
	}
	t.ID = s.genID()
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *memStore) AppendChatLog(_ context.Context, entry models.ChatLog) (models.ChatLog, error) {
	entry.ID = s.genID()
	s.chatLogs = append(s.chatLogs, entry)
	return entry, nil
}

func (s *memStore) RecentChatLogs(_ context.Context, ledgerID string, n int) ([]models.ChatLog, error) {
	var out []models.ChatLog
	for _, entry := range s.chatLogs {
		if entry.LedgerID == ledgerID {
			out = append(out, entry)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (s *memStore) MemberPermission(_ context.Context, ledgerID, userID string) (models.Permission, error) {
	return s.permissions[ledgerID+"/"+userID], nil
}

func (s *memStore) linkedLogs() []models.ChatLog {
	var out []models.ChatLog
	for _, entry := range s.chatLogs {
		if entry.LinkedTransactionID != "" {
			out = append(out, entry)
		}
	}
	return out
}

func workflowCategories() []models.ExpandedCategory {
	return []models.ExpandedCategory{
		{Key: models.CategoryKey{OriginalID: "c1", Label: "餐饮"}, Name: "餐饮", Type: models.TypeExpense},
		{Key: models.CategoryKey{OriginalID: "c1", Label: "交通"}, Name: "交通", Type: models.TypeExpense},
		{Key: models.CategoryKey{OriginalID: "c2", Label: "工资收入"}, Name: "工资收入", Type: models.TypeIncome},
	}
}

func expenseDraft() models.Draft {
	return models.Draft{
		Type:     models.TypeExpense,
		Date:     "2025-01-10",
		Item:     "餐饮",
		Amount:   decimal.NewFromInt(50),
		Person:   "小明",
		Note:     "今天吃饭花了50块",
		Category: models.CategoryKey{OriginalID: "c1", Label: "餐饮"},
	}
}

func TestNewWorkflowAppliesDefaultCategory(t *testing.T) {
	draft := expenseDraft()
	draft.Category = models.CategoryKey{}

	w := NewWorkflow(draft, workflowCategories())

	assert.Equal(t, StateProposed, w.State())
	assert.Equal(t, "餐饮", w.Draft().Category.Label, "first expanded category of the type")
	assert.Empty(t, w.Warning())
}

func TestNewWorkflowWarnsWhenTypeHasNoCategories(t *testing.T) {
	draft := expenseDraft()
	draft.Type = models.TypeIncome
	draft.Category = models.CategoryKey{}

	w := NewWorkflow(draft, []models.ExpandedCategory{
		{Key: models.CategoryKey{OriginalID: "c1", Label: "餐饮"}, Name: "餐饮", Type: models.TypeExpense},
	})

	assert.True(t, w.Draft().Category.IsZero())
	assert.NotEmpty(t, w.Warning())
}

func TestSetTypeClearsMismatchedCategory(t *testing.T) {
	w := NewWorkflow(expenseDraft(), workflowCategories())
	require.Equal(t, "餐饮", w.Draft().Category.Label)

	require.NoError(t, w.SetType(models.TypeIncome))

	assert.Equal(t, StateEditing, w.State())
	// The expense category is invalid for income: the selection goes back to
	// unresolved, it is not silently re-defaulted.
	assert.True(t, w.Draft().Category.IsZero())

	// Confirm is blocked until the user picks an income category.
	store := newMemStore()
	_, err := w.Confirm(context.Background(), store, "L1", "u1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
	assert.Empty(t, store.transactions)
}

func TestSetTypeBackToMatchingTypeStillUnresolved(t *testing.T) {
	w := NewWorkflow(expenseDraft(), workflowCategories())

	require.NoError(t, w.SetType(models.TypeIncome))
	require.NoError(t, w.SetType(models.TypeExpense))

	assert.True(t, w.Draft().Category.IsZero(), "clearing is not undone by switching back")
}

func TestSetCategoryRejectsTypeMismatch(t *testing.T) {
	w := NewWorkflow(expenseDraft(), workflowCategories())

	err := w.SetCategory(models.CategoryKey{OriginalID: "c2", Label: "工资收入"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
}

func TestConfirmBlockedWithoutCategory(t *testing.T) {
	store := newMemStore()
	draft := expenseDraft()
	draft.Category = models.CategoryKey{}

	w := NewWorkflow(draft, nil) // no categories at all

	_, err := w.Confirm(context.Background(), store, "L1", "u1")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
	assert.Empty(t, store.transactions, "create must not be called")
	assert.NotEqual(t, StateConfirmed, w.State())
}

func TestConfirmBlockedWithNonPositiveAmount(t *testing.T) {
	store := newMemStore()
	draft := expenseDraft()
	draft.Amount = decimal.Zero

	w := NewWorkflow(draft, workflowCategories())
	_, err := w.Confirm(context.Background(), store, "L1", "u1")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Empty(t, store.transactions)
}

func TestConfirmPersistsAndLinks(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(expenseDraft(), workflowCategories())

	tx, err := w.Confirm(context.Background(), store, "L1", "u1")
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, w.State())
	require.Len(t, store.transactions, 1)
	assert.Equal(t, "c1", store.transactions[0].CategoryID, "persisted id is the stored record's, not a synthetic one")
	assert.Equal(t, "L1", store.transactions[0].LedgerID)

	linked := store.linkedLogs()
	require.Len(t, linked, 1)
	assert.Equal(t, tx.ID, linked[0].LinkedTransactionID)
	assert.Equal(t, models.RoleAssistant, linked[0].Role)
}

func TestConfirmFailureKeepsDraftForRetry(t *testing.T) {
	store := newMemStore()
	store.failCreate = true
	w := NewWorkflow(expenseDraft(), workflowCategories())

	_, err := w.Confirm(context.Background(), store, "L1", "u1")
	require.Error(t, err)

	assert.Equal(t, StateEditing, w.State())
	assert.Empty(t, store.linkedLogs(), "no transcript entry on persistence failure")
	assert.Equal(t, "餐饮", w.Draft().Category.Label, "draft intact for retry")

	// Retry succeeds without re-entering fields.
	store.failCreate = false
	_, err = w.Confirm(context.Background(), store, "L1", "u1")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, w.State())
	assert.Len(t, store.transactions, 1)
	assert.Len(t, store.linkedLogs(), 1)
}

func TestCancelDiscardsWithoutSideEffects(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(expenseDraft(), workflowCategories())

	require.NoError(t, w.Cancel())

	assert.Equal(t, StateCancelled, w.State())
	assert.Empty(t, store.transactions)
	assert.Empty(t, store.chatLogs)

	_, err := w.Confirm(context.Background(), store, "L1", "u1")
	assert.Error(t, err, "terminal state rejects further actions")
}

func TestEditsRejectedAfterConfirm(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(expenseDraft(), workflowCategories())

	_, err := w.Confirm(context.Background(), store, "L1", "u1")
	require.NoError(t, err)

	assert.Error(t, w.SetAmount(decimal.NewFromInt(10)))
	assert.Error(t, w.SetType(models.TypeIncome))
	assert.Error(t, w.Cancel())
}

func TestSetDateValidatesFormat(t *testing.T) {
	w := NewWorkflow(expenseDraft(), workflowCategories())

	assert.Error(t, w.SetDate("2025/01/10"))
	assert.Error(t, w.SetDate("10-01-2025"))
	assert.NoError(t, w.SetDate("2025-01-09"))
	assert.Equal(t, "2025-01-09", w.Draft().Date)
}
