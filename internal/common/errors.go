// Package common defines shared constants and sentinel errors used across
// the store, sync and CLI layers of menuroll. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidRecipe   = errors.New("invalid recipe")
	ErrNothingToReroll = errors.New("no other recipe available for this category")
	ErrEmptyMenu       = errors.New("menu is empty")

	// Backup errors.
	ErrUnsupportedFormat = errors.New("unsupported backup format version")
	ErrMalformedBackup   = errors.New("malformed backup document")
	ErrPasswordRequired  = errors.New("backup is encrypted, password required")
	ErrSyncNotConfigured = errors.New("sync is not configured")
)
