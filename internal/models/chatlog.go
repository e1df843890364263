package models

import "time"

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatLog is a persisted chat transcript entry. LinkedTransactionID is set
// only on the assistant message that announces a successful transaction
// creation, giving the transcript a one-way reference into ledger state.
type ChatLog struct {
	ID                  string
	LedgerID            string
	UserID              string
	Role                string
	Content             string
	LinkedTransactionID string // empty unless this entry announces a created transaction
	CreatedAt           time.Time
}
