package services

import "errors"

var (
	// ErrIndexOutOfRange is returned by Reroll for a slot the menu does not have.
	ErrIndexOutOfRange = errors.New("menu index out of range")

	// ErrChecklistIndex is returned by ToggleChecklistItem for a missing item.
	ErrChecklistIndex = errors.New("checklist item out of range")

	// ErrPassphraseRequired is returned by UnlockKey when local credentials
	// are protected by a passphrase and none was given.
	ErrPassphraseRequired = errors.New("local passphrase required")
)
