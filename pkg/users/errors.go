package users

import "errors"

var (
	ErrUserNotFound = errors.New("users.errors.not_found")
	ErrLookup       = errors.New("users.errors.lookup_failed")
)
