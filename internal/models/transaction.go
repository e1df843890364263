// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether the value is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Label returns the Chinese display label for the type.
func (t TransactionType) Label() string {
	if t == TypeIncome {
		return "收入"
	}
	return "支出"
}

// Draft is a tentative transaction produced by a parser. It lives in memory
// only: the confirmation workflow mutates it through user edits and either
// discards it or converts it into a persisted Transaction.
type Draft struct {
	Type     TransactionType
	Date     string // ISO calendar date, YYYY-MM-DD
	Item     string // short display label, usually a category name
	Amount   decimal.Decimal
	Person   string
	Note     string
	Category CategoryKey // resolved expanded category; zero when uncategorized
}

// Transaction is a persisted ledger entry. Created exactly once per confirmed
// draft, never speculatively.
type Transaction struct {
	ID         string
	LedgerID   string
	UserID     string
	Type       TransactionType
	Date       string // YYYY-MM-DD
	Item       string
	Amount     decimal.Decimal
	CategoryID string // the stored category record's id, never a synthetic expanded id
	Person     string
	Note       string
	CreatedAt  time.Time
}
