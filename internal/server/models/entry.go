package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/google/uuid"
)

// MaxDescriptionLength is the longest entry description accepted, in characters.
const MaxDescriptionLength = 45

// Entry is a single income or expense line of an owner's ledger.
type Entry struct {
	ID    int64
	UUID  uuid.UUID
	Owner string
	Kind  Kind

	// CategoryID is the database key of the referenced category. It is only
	// known after the category has been resolved against the store.
	CategoryID   int64
	CategoryUUID uuid.UUID

	Description string
	// Price is in minor currency units and may be negative for corrections.
	Price int64

	// CreatedAt is the ledger date. It is set once and used for aggregation.
	CreatedAt time.Time
	// LastUpdate drives last-write-wins conflict detection.
	LastUpdate time.Time
	// IsDeleted is the client's own tombstone flag. Physical removal is a
	// separate operation.
	IsDeleted bool
}

// Validate checks the client-controlled fields of e.
func (e *Entry) Validate() error {
	if e.UUID == uuid.Nil {
		return fmt.Errorf("%w: entry uuid is required", common.ErrValidation)
	}
	if e.CategoryUUID == uuid.Nil {
		return fmt.Errorf("%w: entry %s: category is required", common.ErrValidation, e.UUID)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: entry %s: kind %q is invalid", common.ErrValidation, e.UUID, e.Kind)
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: entry %s: description must not be blank", common.ErrValidation, e.UUID)
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: entry %s: description longer than %d characters", common.ErrValidation, e.UUID, MaxDescriptionLength)
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("%w: entry %s: date is required", common.ErrValidation, e.UUID)
	}
	if e.LastUpdate.IsZero() {
		return fmt.Errorf("%w: entry %s: lastUpdate is required", common.ErrValidation, e.UUID)
	}
	return nil
}
