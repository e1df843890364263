package models

import "time"

// Category is a stored category record: one row per (ledger, type) in the
// common case, whose Name holds one or more labels joined by the reserved
// delimiter. The packed form is a legacy wire format decoded at the boundary;
// in-memory code works with ExpandedCategory.
type Category struct {
	ID        string
	LedgerID  string
	UserID    string
	Type      TransactionType
	Name      string // delimiter-joined labels, e.g. "餐饮;交通;购物"
	CreatedAt time.Time
}

// CategoryKey identifies a single label inside a stored category record.
// Equality is defined on both fields; the stored record id alone is not a
// usable identity because one record packs several labels.
type CategoryKey struct {
	OriginalID string // id of the owning stored record
	Label      string
}

// IsZero reports whether the key is unset (uncategorized).
func (k CategoryKey) IsZero() bool {
	return k.OriginalID == "" && k.Label == ""
}

// ExpandedCategory is one individually addressable label derived from a
// stored record. Expanded entries are recomputed on every fetch and never
// edited in place; edits resolve through Key.OriginalID back to the record.
type ExpandedCategory struct {
	Key  CategoryKey
	Name string // the label itself
	Type TransactionType
}
