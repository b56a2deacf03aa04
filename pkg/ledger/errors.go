package ledger

import "errors"

var (
	ErrNotFound           = errors.New("ledger.errors.not_found")
	ErrDuplicate          = errors.New("ledger.errors.duplicate")
	ErrAlreadyApplied     = errors.New("ledger.errors.already_applied")
	ErrTransitionRejected = errors.New("ledger.errors.transition_rejected")
	ErrAddonAutopay       = errors.New("ledger.errors.addon_autopay_not_allowed")
	ErrInvalidRecord      = errors.New("ledger.errors.invalid_record")
	ErrStore              = errors.New("ledger.errors.store_failure")
)
