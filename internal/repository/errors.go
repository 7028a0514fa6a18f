package repository

import "errors"

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrAlreadySuperseded is returned when saving a version of a record that
// another version already replaces.
var ErrAlreadySuperseded = errors.New("interaction already has a newer version")
