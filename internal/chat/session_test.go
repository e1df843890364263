package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jianji/ledger-assistant/internal/assistant"
	"jianji/ledger-assistant/internal/logging"
	"jianji/ledger-assistant/internal/models"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, _ []assistant.Turn) (string, error) {
	return f.reply, f.err
}

func newTestSession(store *memStore, completer assistant.Completer) *Session {
	var parser *assistant.Parser
	if completer != nil {
		parser = assistant.NewParser(completer, 5, logging.NewMockLogger())
	}
	store.permissions["L1/u1"] = models.PermissionOwner
	return NewSession(store, parser, "L1", models.User{ID: "u1", DisplayName: "小明"}, 5, logging.NewMockLogger())
}

func TestSendHeuristicOnlyProducesWorkflow(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, nil)

	outcome, err := session.Send(context.Background(), "今天吃饭花了50块", workflowCategories())
	require.NoError(t, err)

	require.NotNil(t, outcome.Workflow)
	draft := outcome.Workflow.Draft()
	assert.Equal(t, models.TypeExpense, draft.Type)
	assert.Equal(t, "餐饮", draft.Category.Label)
	assert.NotEmpty(t, outcome.Reply)
}

func TestSendHeuristicNoAmountAsksToRephrase(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, nil)

	outcome, err := session.Send(context.Background(), "随便聊聊", workflowCategories())
	require.NoError(t, err)

	assert.Nil(t, outcome.Workflow)
	assert.Equal(t, rephraseMessage, outcome.Reply)
}

func TestSendPersistsBothTranscriptEntries(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, nil)

	_, err := session.Send(context.Background(), "今天吃饭花了50块", workflowCategories())
	require.NoError(t, err)

	require.Len(t, store.chatLogs, 2)
	assert.Equal(t, models.RoleUser, store.chatLogs[0].Role)
	assert.Equal(t, "今天吃饭花了50块", store.chatLogs[0].Content)
	assert.Equal(t, models.RoleAssistant, store.chatLogs[1].Role)
}

func TestSendAssistantUnavailableApologizes(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, &fakeCompleter{err: errors.New("timeout")})

	outcome, err := session.Send(context.Background(), "吃饭50", workflowCategories())
	require.NoError(t, err, "transport failure is never fatal")

	assert.Nil(t, outcome.Workflow)
	assert.Equal(t, apologyMessage, outcome.Reply)
}

func TestSendAssistantConversationalReply(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, &fakeCompleter{reply: "请问花了多少钱？"})

	outcome, err := session.Send(context.Background(), "我买了点东西", workflowCategories())
	require.NoError(t, err)

	assert.Nil(t, outcome.Workflow)
	assert.Equal(t, "请问花了多少钱？", outcome.Reply)
}

func TestSendAssistantDraftReply(t *testing.T) {
	store := newMemStore()
	reply := "```json\n{\"type\": \"expense\", \"amount\": 15, \"category\": \"餐饮\", \"description\": \"买咖啡\", \"date\": \"2025-01-10\", \"message\": \"记好了！\"}\n```"
	session := newTestSession(store, &fakeCompleter{reply: reply})

	outcome, err := session.Send(context.Background(), "买咖啡花了十五", workflowCategories())
	require.NoError(t, err)

	require.NotNil(t, outcome.Workflow)
	assert.Equal(t, "记好了！", outcome.Reply)
	assert.Equal(t, "餐饮", outcome.Workflow.Draft().Category.Label)
}

func TestSendRejectedWithoutRecordPermission(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, nil)
	store.permissions["L1/u1"] = models.PermissionViewOnly

	_, err := session.Send(context.Background(), "吃饭50", workflowCategories())
	require.ErrorIs(t, err, ErrNoRecordPermission)
	assert.Empty(t, store.chatLogs, "nothing persisted for a rejected send")
}

func TestSendRemovesPlaceholderAfterSettling(t *testing.T) {
	store := newMemStore()
	session := newTestSession(store, nil)

	_, err := session.Send(context.Background(), "今天吃饭花了50块", workflowCategories())
	require.NoError(t, err)

	for _, m := range session.Transcript() {
		assert.False(t, m.Pending, "no placeholder may survive a settled send")
	}
	// User message and assistant reply remain.
	assert.Len(t, session.Transcript(), 2)
}
