package reconciler

import "errors"

var (
	ErrInvalidSignature = errors.New("reconciler.errors.invalid_signature")
	ErrInvalidStatus    = errors.New("reconciler.errors.invalid_status")
	ErrInvalidInput     = errors.New("reconciler.errors.invalid_input")
)
