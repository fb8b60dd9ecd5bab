// Package common defines sentinel errors and constants shared by the
// repositories, services and the HTTP layer of the ledger server. Callers
// should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrValidation = errors.New("validation error")

	// Category lifecycle errors. They abort the whole call.
	ErrCategoryExists     = errors.New("category already exists")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryHasEntries = errors.New("category has entries")

	// Identity errors raised by the owner resolver.
	ErrOwnerNotFound = errors.New("owner not found")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
)
