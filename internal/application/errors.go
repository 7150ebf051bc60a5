package application

import "errors"

// Service-level errors. Lifecycle guard errors (code expiry/mismatch,
// unverified email, missing review) propagate from the entity package
// untouched so handlers can match on either set with errors.Is.
var (
	ErrDuplicateUser      = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrStorageUnavailable = errors.New("object storage not configured")
	ErrSearchUnavailable  = errors.New("search not configured")
)
