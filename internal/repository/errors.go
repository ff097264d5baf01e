// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current donor is not
// authorized to act on a donation owned by someone else, while
// ErrConflict signals that a lifecycle transition cannot proceed from
// the record's current status.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a donation they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a lifecycle transition is not allowed
// from the record's current status, such as cancelling an already
// confirmed donation or assigning a nurse to a cancelled one.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrCodeNotFound is returned by the confirmation-code exchange when no
// pending donation carries the submitted code. A code belonging to a
// started, confirmed or cancelled record deliberately yields this same
// error so the caller only ever learns "invalid or already used".
var ErrCodeNotFound = errors.New("confirm code not found")
