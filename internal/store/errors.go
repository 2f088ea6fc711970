package store

import (
	"errors"

	sqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Sentinel errors returned by store operations. Handlers match these with
// errors.Is to pick the HTTP status.
var (
	// ErrNotFound means the referenced item, user or swap does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAllowed means the caller is neither the required party nor an admin.
	ErrNotAllowed = errors.New("not allowed")

	// ErrInvalidState means a lifecycle guard was violated, e.g. accepting
	// a swap that is not pending.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrItemUnavailable means the item is not open for swaps or redemption.
	ErrItemUnavailable = errors.New("item is not available")

	// ErrOwnItem means a user tried to swap or redeem their own listing.
	ErrOwnItem = errors.New("cannot swap your own item")

	// ErrInsufficientPoints means a debit would drive a balance negative.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrDuplicateEmail means the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// IsLocked reports whether err is SQLite telling us another writer held the
// database past the busy timeout. The API maps this to 409 Conflict.
func IsLocked(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == sqlitelib.SQLITE_BUSY || code == sqlitelib.SQLITE_LOCKED
	}
	return false
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}
	return false
}
