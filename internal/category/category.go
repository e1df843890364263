// Package category converts between the packed stored form of category
// records (one row per type, labels joined by a reserved delimiter) and the
// expanded, individually addressable entries the parsers and the confirmation
// workflow operate on. All category lookups and edits pass through here.
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jianji/ledger-assistant/internal/logging"
	"jianji/ledger-assistant/internal/models"
)

// Delimiter separates labels inside a stored record's name. It must never
// appear inside an individual label; Add and Rename enforce this.
const Delimiter = ";"

var (
	// ErrInvalidLabel means the label is empty after trimming or contains the
	// delimiter.
	ErrInvalidLabel = errors.New("invalid category label")

	// ErrDuplicateCategory means a case-insensitive equal label already exists
	// for the same type.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrNotFound means the stored record backing an expanded entry no longer
	// exists (e.g. deleted concurrently).
	ErrNotFound = errors.New("category record not found")
)

// Repository is the persistence surface the adapter needs. The store package
// provides the production implementation.
type Repository interface {
	CategoriesByLedger(ctx context.Context, ledgerID string) ([]models.Category, error)
	CategoryByID(ctx context.Context, id string) (models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (string, error)
	UpdateCategoryName(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error
}

// SplitLabels decodes a packed name into its individual labels: split on the
// delimiter, trim, drop empties. Order is preserved.
func SplitLabels(name string) []string {
	parts := strings.Split(name, Delimiter)
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

// JoinLabels encodes labels back into the packed wire form.
func JoinLabels(labels []string) string {
	return strings.Join(labels, Delimiter)
}

// Expand derives one entry per label from each stored record. Order is
// stable: source order of records, then split order of labels, so callers may
// rely on it for deterministic default selection.
func Expand(records []models.Category) []models.ExpandedCategory {
	var expanded []models.ExpandedCategory
	for _, record := range records {
		for _, label := range SplitLabels(record.Name) {
			expanded = append(expanded, models.ExpandedCategory{
				Key:  models.CategoryKey{OriginalID: record.ID, Label: label},
				Name: label,
				Type: record.Type,
			})
		}
	}
	return expanded
}

// Service applies label edits to stored records through a Repository.
type Service struct {
	repo Repository
	log  logging.Logger
}

// NewService creates a category service.
func NewService(repo Repository, logger logging.Logger) *Service {
	if logger == nil {
		logger = &logging.MockLogger{}
	}
	return &Service{repo: repo, log: logger}
}

// Expanded fetches a ledger's stored records and returns the expanded view.
func (s *Service) Expanded(ctx context.Context, ledgerID string) ([]models.ExpandedCategory, error) {
	records, err := s.repo.CategoriesByLedger(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return Expand(records), nil
}

// Add appends a new label to the ledger's stored record for the given type,
// creating the record when the type has none yet.
func (s *Service) Add(ctx context.Context, ledgerID, userID string, typ models.TransactionType, label string) error {
	label, err := validateLabel(label)
	if err != nil {
		return err
	}

	records, err := s.repo.CategoriesByLedger(ctx, ledgerID)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	if hasLabel(records, typ, label, models.CategoryKey{}) {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, label)
	}

	for _, record := range records {
		if record.Type != typ {
			continue
		}
		labels := append(SplitLabels(record.Name), label)
		if err := s.repo.UpdateCategoryName(ctx, record.ID, JoinLabels(labels)); err != nil {
			return fmt.Errorf("appending label: %w", err)
		}
		s.log.Debug("category label added", logging.F("label", label), logging.F("record", record.ID))
		return nil
	}

	// No stored record of this type yet.
	id, err := s.repo.CreateCategory(ctx, models.Category{
		LedgerID: ledgerID,
		UserID:   userID,
		Type:     typ,
		Name:     label,
	})
	if err != nil {
		return fmt.Errorf("creating category record: %w", err)
	}
	s.log.Debug("category record created", logging.F("label", label), logging.F("record", id))
	return nil
}

// Remove deletes a single label from its owning stored record. Removing the
// last label deletes the record: a stored record never holds zero labels.
// Transactions referencing the label are left untouched; they read back as
// uncategorized. This is a deliberate no-op, not a cascading delete.
func (s *Service) Remove(ctx context.Context, entry models.ExpandedCategory) error {
	record, err := s.repo.CategoryByID(ctx, entry.Key.OriginalID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, entry.Key.OriginalID)
	}

	labels := SplitLabels(record.Name)
	remaining := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != entry.Key.Label {
			remaining = append(remaining, l)
		}
	}
	if len(remaining) == len(labels) {
		return fmt.Errorf("%w: label %q", ErrNotFound, entry.Key.Label)
	}

	if len(remaining) == 0 {
		if err := s.repo.DeleteCategory(ctx, record.ID); err != nil {
			return fmt.Errorf("deleting category record: %w", err)
		}
		s.log.Debug("category record deleted", logging.F("record", record.ID))
		return nil
	}

	if err := s.repo.UpdateCategoryName(ctx, record.ID, JoinLabels(remaining)); err != nil {
		return fmt.Errorf("removing label: %w", err)
	}
	return nil
}

// Rename replaces a label in place within its owning stored record,
// preserving the positions of the other labels.
func (s *Service) Rename(ctx context.Context, entry models.ExpandedCategory, newLabel string) error {
	newLabel, err := validateLabel(newLabel)
	if err != nil {
		return err
	}

	record, err := s.repo.CategoryByID(ctx, entry.Key.OriginalID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, entry.Key.OriginalID)
	}

	records, err := s.repo.CategoriesByLedger(ctx, record.LedgerID)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	if hasLabel(records, entry.Type, newLabel, entry.Key) {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, newLabel)
	}

	labels := SplitLabels(record.Name)
	replaced := false
	for i, l := range labels {
		if l == entry.Key.Label {
			labels[i] = newLabel
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("%w: label %q", ErrNotFound, entry.Key.Label)
	}

	if err := s.repo.UpdateCategoryName(ctx, record.ID, JoinLabels(labels)); err != nil {
		return fmt.Errorf("renaming label: %w", err)
	}
	s.log.Debug("category label renamed",
		logging.F("from", entry.Key.Label), logging.F("to", newLabel))
	return nil
}

// validateLabel trims the label and rejects empty or delimiter-bearing ones.
func validateLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("%w: empty label", ErrInvalidLabel)
	}
	if strings.Contains(label, Delimiter) {
		return "", fmt.Errorf("%w: label must not contain %q", ErrInvalidLabel, Delimiter)
	}
	return label, nil
}

// hasLabel reports whether a case-insensitive equal label already exists for
// the type, skipping the entry identified by exclude (used by Rename so a
// case-only rename of the same label is not a collision).
func hasLabel(records []models.Category, typ models.TransactionType, label string, exclude models.CategoryKey) bool {
	for _, entry := range Expand(records) {
		if entry.Type != typ || entry.Key == exclude {
			continue
		}
		if strings.EqualFold(entry.Name, label) {
			return true
		}
	}
	return false
}
