package models

import "time"

// Ledger is a named collection of transactions and categories, ownable and
// shareable with other users at different permission levels.
type Ledger struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Permission is a member's access level on a shared ledger.
type Permission string

const (
	PermissionOwner    Permission = "owner"
	PermissionEditAdd  Permission = "edit_add"
	PermissionAddOnly  Permission = "add_only"
	PermissionViewOnly Permission = "view_only"
)

// CanRecord reports whether the permission allows adding transactions.
func (p Permission) CanRecord() bool {
	switch p {
	case PermissionOwner, PermissionEditAdd, PermissionAddOnly:
		return true
	}
	return false
}

// Member links a user to a shared ledger with a permission level.
type Member struct {
	LedgerID   string
	UserID     string
	Permission Permission
	CreatedAt  time.Time
}

// User is the identity collaborator's view of the acting user. Both fields
// are opaque values supplied by the auth layer.
type User struct {
	ID          string
	DisplayName string
}
