package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/google/uuid"
)

// Category groups entries of one kind for one owner.
type Category struct {
	// ID is assigned by the database and used for ordering only.
	ID int64
	// UUID is chosen by the client and never changes.
	UUID       uuid.UUID
	Name       string
	Kind       Kind
	Owner      string
	CreatedAt  time.Time
	LastUpdate time.Time
	// IsDeleted retires the category without removing the row.
	IsDeleted bool
}

// Validate checks the client-controlled fields of c.
func (c *Category) Validate() error {
	if c.UUID == uuid.Nil {
		return fmt.Errorf("%w: category uuid is required", common.ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name must not be blank", common.ErrValidation)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: category kind %q is invalid", common.ErrValidation, c.Kind)
	}
	return nil
}
